package record_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/TalShar783/Taskmaster/cmd/common"
	"github.com/TalShar783/Taskmaster/cmd/record"
	"github.com/TalShar783/Taskmaster/cmd/root"
	"github.com/TalShar783/Taskmaster/internal/config"
	"github.com/TalShar783/Taskmaster/internal/container"
	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"
	"github.com/TalShar783/Taskmaster/internal/store"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useLedger(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore(nil)
	s.SetTable(models.DefaultTransactionsTable, [][]string{{"Date", "Name", "Reason", "Amount", "Notes"}})
	s.SetTable(models.DefaultTasksTable, [][]string{{"Task", "Reward", "Average"}, {"Dishes", "5", "5"}})
	s.SetTable(models.DefaultBountiesTable, [][]string{{"Bounty", "Reward"}, {"Mow lawn", "10"}})
	s.SetTable(models.DefaultTotalsTable, [][]string{{"", "Nathan", "Total"}, {"", "42", "42"}})

	prevConfig, prevNew := root.AppConfig, common.NewContainer
	root.AppConfig = &config.Config{
		Log:    config.LogConfig{Level: "info", Format: "text"},
		Store:  config.StoreConfig{Backend: config.BackendMemory},
		Tables: models.DefaultTables(),
		Ledger: config.LedgerConfig{BroadcastName: "Everyone", NotesSuffix: " - Added by Bot", Timezone: "UTC"},
	}
	common.NewContainer = func(_ context.Context, cfg *config.Config) (*container.Container, error) {
		return container.NewContainerWithStore(cfg, s, logging.NewMockLogger())
	}
	t.Cleanup(func() {
		root.AppConfig, common.NewContainer = prevConfig, prevNew
	})
	return s
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() { cmd.SetOut(nil) })
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestRecordCommand_Metadata(t *testing.T) {
	assert.Equal(t, "record <task>", record.Cmd.Use)
	assert.Contains(t, record.Cmd.Short, "completed task")
	assert.NotNil(t, record.Cmd.RunE)
	assert.Error(t, record.Cmd.Args(record.Cmd, nil))
}

func TestRecordCommand_Flags(t *testing.T) {
	nameFlag := record.Cmd.Flags().Lookup("name")
	require.NotNil(t, nameFlag)
	assert.Equal(t, "n", nameFlag.Shorthand)
	assert.Contains(t, nameFlag.Usage, "did the task")

	notesFlag := record.Cmd.Flags().Lookup("notes")
	require.NotNil(t, notesFlag)
	assert.Equal(t, "", notesFlag.DefValue)
}

func TestRecordCommand_Run(t *testing.T) {
	s := useLedger(t)
	require.NoError(t, record.Cmd.Flags().Set("name", "Nathan"))
	require.NoError(t, record.Cmd.Flags().Set("notes", "after dinner"))
	t.Cleanup(func() {
		_ = record.Cmd.Flags().Set("name", "")
		_ = record.Cmd.Flags().Set("notes", "")
	})

	out, err := run(t, record.Cmd, "Dishes")
	require.NoError(t, err)
	assert.Contains(t, out, "Task completion recorded for Nathan! You earned $5 for Dishes!")

	rows := s.Table(models.DefaultTransactionsTable)
	require.Len(t, rows, 2)
	assert.Equal(t, "after dinner - Added by Bot", rows[1][4])
}

func TestRecordCommand_UnknownTask(t *testing.T) {
	useLedger(t)
	require.NoError(t, record.Cmd.Flags().Set("name", "Nathan"))
	t.Cleanup(func() { _ = record.Cmd.Flags().Set("name", "") })

	out, err := run(t, record.Cmd, "Vacuum")
	assert.Error(t, err)
	assert.Equal(t, "Could not find a task named \"Vacuum\".\n", out)
}
