// Package validation checks the files taskmaster reads secrets from and writes exports to.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
)

// CredentialsFile checks that a service-account key exists and is a regular file.
func CredentialsFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("credentials file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking credentials file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("credentials file %s is not a regular file", path)
	}
	return nil
}

// FilePermissions reports files that other users can access.
func FilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600", mode.Perm().String())
	}
	return nil
}

// OutputPath checks that path names a file that can be created or replaced.
func OutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("output path must not be empty")
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error checking output path %s: %w", path, err)
	}
	if filepath.Ext(path) == "" {
		return fmt.Errorf("output path %s has no file extension", path)
	}
	return nil
}
