// Package roll evaluates reward expressions without touching the ledger
package roll

import (
	"fmt"

	"github.com/TalShar783/Taskmaster/cmd/root"
	"github.com/TalShar783/Taskmaster/internal/dice"
	"github.com/TalShar783/Taskmaster/internal/ledger"
	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"

	"github.com/spf13/cobra"
)

var (
	times int

	newResolver = func() *dice.Resolver { return dice.NewResolver(nil) }
)

// Cmd represents the roll command
var Cmd = &cobra.Command{
	Use:   "roll <expression>",
	Short: "Roll a reward expression",
	Long: `Resolve a reward expression the way task and bounty rewards are resolved:
a plain number such as 4.20 or dice such as 2d6+3.`,
	Args: cobra.ExactArgs(1),
	RunE: rollFunc,
}

func init() {
	Cmd.Flags().IntVarP(&times, "times", "t", 1, "Number of times to roll")
}

func rollFunc(cmd *cobra.Command, args []string) error {
	resolver := newResolver()
	out := cmd.OutOrStdout()

	if dice.IsDiceExpression(args[0]) {
		if expr, err := dice.Parse(args[0]); err == nil {
			fmt.Fprintf(out, "%s: %s to %s\n", args[0],
				models.FormatAmount(expr.Min()), models.FormatAmount(expr.Max()))
		}
	}
	for i := 0; i < times; i++ {
		amount, err := resolver.Resolve(args[0])
		if err != nil {
			root.Log.WithError(err).Debug("Roll failed", logging.F(logging.FieldExpression, args[0]))
			fmt.Fprintln(out, ledger.Reply(ledger.Result{}, err))
			return err
		}
		fmt.Fprintln(out, models.FormatAmount(amount))
	}
	return nil
}
