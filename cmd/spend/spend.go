// Package spend handles the spending command
package spend

import (
	"context"

	"github.com/TalShar783/Taskmaster/cmd/common"
	"github.com/TalShar783/Taskmaster/internal/ledger"
	"github.com/TalShar783/Taskmaster/internal/ledgererror"
	"github.com/TalShar783/Taskmaster/internal/models"

	"github.com/spf13/cobra"
)

var reason string

// Cmd represents the spend command
var Cmd = &cobra.Command{
	Use:   "spend <amount>",
	Short: "Record money spent",
	Long:  `Debit someone's balance. The amount is a decimal with no currency sign, eg. 4.20.`,
	Args:  cobra.ExactArgs(1),
	RunE:  spendFunc,
}

func init() {
	common.AddActorFlags(Cmd, "The name of the person who spent the money")
	Cmd.Flags().StringVarP(&reason, "reason", "r", "", "What did you spend the money on?")
}

func spendFunc(cmd *cobra.Command, args []string) error {
	amount, err := models.ParseAmount(args[0])
	if err != nil {
		return common.PrintReply(cmd, ledger.Result{}, &ledgererror.ValidationError{
			Field: "amount", Value: args[0], Reason: "not a number"})
	}
	return common.RunAs(cmd, func(ctx context.Context, rec *ledger.Recorder, actor string) (ledger.Result, error) {
		return rec.Spend(ctx, amount, reason, actor, common.Notes(cmd))
	})
}
