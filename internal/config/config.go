package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/TalShar783/Taskmaster/internal/logging"

	"github.com/joho/godotenv"
)

var once sync.Once

// FindEnvFile returns the .env file in the current or parent directory, or ""
// when there is none.
func FindEnvFile() string {
	for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadEnv loads environment variables from a .env file if one exists. Variables
// already set in the environment win. It runs once per process.
func LoadEnv(logger logging.Logger) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	once.Do(func() {
		envFile := FindEnvFile()
		if envFile == "" {
			logger.Debug("No .env file found, using environment variables")
			return
		}
		if err := godotenv.Load(envFile); err != nil {
			logger.WithError(err).Warn("Error loading .env file")
			return
		}
		logger.Info("Loaded environment variables", logging.F("file", envFile))
	})
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
