// Package balance handles the balance lookup command
package balance

import (
	"context"
	"fmt"

	"github.com/TalShar783/Taskmaster/cmd/common"
	"github.com/TalShar783/Taskmaster/internal/container"
	"github.com/TalShar783/Taskmaster/internal/ledger"

	"github.com/spf13/cobra"
)

// Cmd represents the balance command
var Cmd = &cobra.Command{
	Use:   "balance <name>",
	Short: "Show someone's balance",
	Long:  `Read a person's running total from the totals table.`,
	Args:  cobra.ExactArgs(1),
	RunE:  balanceFunc,
}

func balanceFunc(cmd *cobra.Command, args []string) error {
	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		rec := c.GetRecorder()
		if err := rec.CheckMember(ctx, args[0]); err != nil {
			return common.PrintReply(cmd, ledger.Result{}, err)
		}
		bal, err := rec.CheckBalance(ctx, args[0])
		if err != nil {
			return common.PrintReply(cmd, ledger.Result{Operation: ledger.OpCheckBalance}, err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), ledger.BalanceMessage(bal))
		return err
	})
}
