// Package list prints the tasks, bounties or people the ledger knows about
package list

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/TalShar783/Taskmaster/cmd/common"
	"github.com/TalShar783/Taskmaster/internal/container"
	"github.com/TalShar783/Taskmaster/internal/models"

	"github.com/spf13/cobra"
)

// Cmd represents the list command
var Cmd = &cobra.Command{
	Use:       "list <tasks|bounties|users>",
	Short:     "List tasks, bounties or people",
	Long:      `Load one catalog from the spreadsheet and print it in table order.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"tasks", "bounties", "users"},
	RunE:      listFunc,
}

func listFunc(cmd *cobra.Command, args []string) error {
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return err
	}
	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		cat := c.GetCatalog()
		if err := cat.Refresh(ctx, kind); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if kind == models.KindUser {
			for _, name := range cat.ListNames(kind) {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tREWARD\tAVERAGE\tNOTES")
		for _, e := range cat.Entries(kind) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.RewardExpression, e.AverageHint, e.Notes)
		}
		return w.Flush()
	})
}
