package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/TalShar783/Taskmaster/internal/config"
	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"
	"github.com/TalShar783/Taskmaster/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Log:     config.LogConfig{Level: "info", Format: "text"},
		Discord: config.DiscordConfig{ReplyRetryDelaySeconds: 3},
		Store:   config.StoreConfig{Backend: backend},
		Sheets:  config.SheetsConfig{RequestsPerMinute: 60},
		Tables:  models.DefaultTables(),
		Ledger: config.LedgerConfig{
			BroadcastName:       "Everyone",
			NotesSuffix:         " - Added by Bot",
			Timezone:            "UTC",
			DefaultBountyReward: "2d8",
		},
	}
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil config",
			config:      nil,
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "memory backend",
			config: testConfig(config.BackendMemory),
		},
		{
			name: "sqlite backend",
			config: func() *config.Config {
				cfg := testConfig(config.BackendSQLite)
				cfg.SQLite.Path = filepath.Join(t.TempDir(), "ledger.db")
				return cfg
			}(),
		},
		{
			name:        "sheets backend without spreadsheet id",
			config:      testConfig(config.BackendSheets),
			expectError: true,
			errorMsg:    "spreadsheet id is required",
		},
		{
			name:        "unknown backend",
			config:      testConfig("postgres"),
			expectError: true,
			errorMsg:    "unknown store backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(context.Background(), tt.config)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			defer c.Close()

			assert.NotNil(t, c.GetLogger())
			assert.Equal(t, tt.config, c.GetConfig())
			assert.NotNil(t, c.GetStore())
			assert.NotNil(t, c.GetCatalog())
			assert.NotNil(t, c.GetResolver())
			assert.NotNil(t, c.GetRecorder())
			assert.NotNil(t, c.GetExporter())

			// Local backends start with header rows, so every catalog loads.
			require.NoError(t, c.GetCatalog().RefreshAll(context.Background()))
			assert.Equal(t, []string{"Everyone"}, c.GetCatalog().ListNames(models.KindUser))
		})
	}
}

func TestNewContainer_MemoryFixture(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "household.yaml")
	seeded, err := store.NewMemoryStoreFromFixture(fixture, false, nil)
	require.NoError(t, err)
	seeded.SetTable(models.DefaultTasksTable, [][]string{{"Task", "Reward"}, {"Dishes", "5"}})
	seeded.SetTable(models.DefaultTotalsTable, [][]string{{"", "Nathan", "Total"}, {"", "42", "42"}})
	require.NoError(t, seeded.Save())

	cfg := testConfig(config.BackendMemory)
	cfg.Memory.FixtureFile = fixture
	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	res, err := c.GetRecorder().RecordTask(ctx, "Dishes", "Nathan", "")
	require.NoError(t, err)
	assert.Equal(t, "42", res.Balance)

	bal, err := c.GetRecorder().CheckBalance(ctx, "Everyone")
	require.NoError(t, err)
	assert.Equal(t, "N/A", bal.Value)
}

func TestNewContainerWithStore(t *testing.T) {
	mock := logging.NewMockLogger()
	s := store.NewMemoryStore(nil)

	c, err := NewContainerWithStore(testConfig(config.BackendMemory), s, mock)
	require.NoError(t, err)
	assert.Same(t, s, c.GetStore())
	assert.True(t, mock.HasEntry("INFO", "Container initialized successfully"))

	_, err = NewContainerWithStore(testConfig(config.BackendMemory), nil, mock)
	assert.Error(t, err)

	cfg := testConfig(config.BackendMemory)
	cfg.Ledger.Timezone = "Nowhere/Land"
	_, err = NewContainerWithStore(cfg, s, mock)
	assert.Error(t, err)
}

func TestContainer_Close(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(config.BackendMemory))
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
