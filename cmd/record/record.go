// Package record handles the task completion command
package record

import (
	"context"

	"github.com/TalShar783/Taskmaster/cmd/common"
	"github.com/TalShar783/Taskmaster/internal/ledger"

	"github.com/spf13/cobra"
)

// Cmd represents the record command
var Cmd = &cobra.Command{
	Use:   "record <task>",
	Short: "Record a completed task",
	Long:  `Record a completed task from the task list and pay out its reward to the person who did it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  recordFunc,
}

func init() {
	common.AddActorFlags(Cmd, "The name of the person who did the task")
}

func recordFunc(cmd *cobra.Command, args []string) error {
	return common.RunAs(cmd, func(ctx context.Context, rec *ledger.Recorder, actor string) (ledger.Result, error) {
		return rec.RecordTask(ctx, args[0], actor, common.Notes(cmd))
	})
}
