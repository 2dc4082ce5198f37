// Package bounty handles the bounty completion command
package bounty

import (
	"context"

	"github.com/TalShar783/Taskmaster/cmd/common"
	"github.com/TalShar783/Taskmaster/internal/ledger"

	"github.com/spf13/cobra"
)

// Cmd represents the bounty command
var Cmd = &cobra.Command{
	Use:   "bounty <bounty>",
	Short: "Claim a bounty from the bounty board",
	Long: `Pay out a bounty's reward and take the bounty off the bounty board.
Bounties can only be claimed once.`,
	Args: cobra.ExactArgs(1),
	RunE: bountyFunc,
}

func init() {
	common.AddActorFlags(Cmd, "The name of the person completing the bounty")
}

func bountyFunc(cmd *cobra.Command, args []string) error {
	return common.RunAs(cmd, func(ctx context.Context, rec *ledger.Recorder, actor string) (ledger.Result, error) {
		return rec.CompleteBounty(ctx, args[0], actor, common.Notes(cmd))
	})
}
