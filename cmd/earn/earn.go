// Package earn handles the direct earning command
package earn

import (
	"context"

	"github.com/TalShar783/Taskmaster/cmd/common"
	"github.com/TalShar783/Taskmaster/internal/ledger"

	"github.com/spf13/cobra"
)

var reason string

// Cmd represents the earn command
var Cmd = &cobra.Command{
	Use:   "earn <amount>",
	Short: "Record money earned outside the task list",
	Long: `Credit someone with an amount of money. The amount is a decimal such as 4.20
or a dice expression such as 2d6+3, which is rolled.`,
	Args: cobra.ExactArgs(1),
	RunE: earnFunc,
}

func init() {
	common.AddActorFlags(Cmd, "The name of the person who earned the money")
	Cmd.Flags().StringVarP(&reason, "reason", "r", "", "What you did to earn the money")
}

func earnFunc(cmd *cobra.Command, args []string) error {
	return common.RunAs(cmd, func(ctx context.Context, rec *ledger.Recorder, actor string) (ledger.Result, error) {
		return rec.Earn(ctx, args[0], reason, actor, common.Notes(cmd))
	})
}
