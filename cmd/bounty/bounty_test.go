package bounty_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/TalShar783/Taskmaster/cmd/bounty"
	"github.com/TalShar783/Taskmaster/cmd/common"
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

func TestBountyCommand_Metadata(t *testing.T) {
	assert.Equal(t, "bounty <bounty>", bounty.Cmd.Use)
	assert.Contains(t, bounty.Cmd.Long, "only be claimed once")
	assert.NotNil(t, bounty.Cmd.RunE)

	nameFlag := bounty.Cmd.Flags().Lookup("name")
	require.NotNil(t, nameFlag)
	assert.Equal(t, "n", nameFlag.Shorthand)
}

func TestBountyCommand_ClaimsOnce(t *testing.T) {
	s := useLedger(t)
	require.NoError(t, bounty.Cmd.Flags().Set("name", "Nathan"))
	t.Cleanup(func() { _ = bounty.Cmd.Flags().Set("name", "") })

	out, err := run(t, bounty.Cmd, "Mow lawn")
	require.NoError(t, err)
	assert.Contains(t, out, "Bounty completion rewarded for Nathan! You earned $10 for Mow lawn!")
	assert.Equal(t, [][]string{{"Bounty", "Reward"}}, s.Table(models.DefaultBountiesTable))

	out, err = run(t, bounty.Cmd, "Mow lawn")
	assert.Error(t, err)
	assert.Equal(t, "Could not find a bounty named \"Mow lawn\".\n", out)
	assert.Len(t, s.Table(models.DefaultTransactionsTable), 2)
}
