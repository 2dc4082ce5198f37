// Package export writes the transaction table out as CSV
package export

import (
	"context"
	"unicode/utf8"

	"github.com/TalShar783/Taskmaster/cmd/common"
	"github.com/TalShar783/Taskmaster/internal/container"
	"github.com/TalShar783/Taskmaster/internal/export"
	"github.com/TalShar783/Taskmaster/internal/validation"

	"github.com/spf13/cobra"
)

var (
	output    string
	delimiter string
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the transaction table to CSV",
	Long: `Read every transaction back from the ledger and write it as CSV with the
columns Date, Actor, Label, Amount and Notes. Without --output the CSV goes to stdout.`,
	Args: cobra.NoArgs,
	RunE: exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file (default stdout)")
	Cmd.Flags().StringVarP(&delimiter, "delimiter", "d", ",", "CSV field delimiter")
}

func exportFunc(cmd *cobra.Command, args []string) error {
	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		records, err := c.GetRecorder().Transactions(ctx)
		if err != nil {
			return err
		}

		w := c.GetExporter()
		if r, _ := utf8.DecodeRuneInString(delimiter); r != utf8.RuneError && delimiter != "" {
			w = export.NewWriter(r, c.GetLogger())
		}
		if output == "" {
			return w.Write(cmd.OutOrStdout(), records)
		}
		if err := validation.OutputPath(output); err != nil {
			return err
		}
		return w.WriteFile(output, records)
	})
}
