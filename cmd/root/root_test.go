package root_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TalShar783/Taskmaster/cmd/root"
	"github.com/TalShar783/Taskmaster/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "taskmaster", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "chore ledger")
	assert.Contains(t, root.Cmd.Long, "taskmaster serve")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.True(t, root.Cmd.SilenceUsage)
}

func TestRootCommand_Flags(t *testing.T) {
	configFlag := root.Cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "", configFlag.DefValue)

	logLevelFlag := root.Cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logLevelFlag)
	assert.Contains(t, logLevelFlag.Usage, "Log level")

	backendFlag := root.Cmd.PersistentFlags().Lookup("backend")
	require.NotNil(t, backendFlag)
	assert.Equal(t, "b", backendFlag.Shorthand)
	assert.Contains(t, backendFlag.Usage, "sqlite")
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\nledger:\n  timezone: UTC\n"), 0600))

	t.Cleanup(func() { root.SharedFlags = root.CommonFlags{} })
	root.SharedFlags = root.CommonFlags{ConfigFile: path, LogLevel: "debug", Backend: config.BackendMemory}

	require.NoError(t, root.LoadConfig())
	require.NotNil(t, root.AppConfig)
	assert.Equal(t, "debug", root.AppConfig.Log.Level)
	assert.Equal(t, config.BackendMemory, root.AppConfig.Store.Backend)
	assert.Equal(t, "UTC", root.AppConfig.Ledger.Timezone)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Cleanup(func() { root.SharedFlags = root.CommonFlags{} })
	root.SharedFlags = root.CommonFlags{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}

	assert.Error(t, root.LoadConfig())
}
