// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/TalShar783/Taskmaster/cmd/root"
	"github.com/TalShar783/Taskmaster/internal/container"
	"github.com/TalShar783/Taskmaster/internal/ledger"
	"github.com/TalShar783/Taskmaster/internal/logging"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ContainerFunc runs a command body against a wired container.
type ContainerFunc func(ctx context.Context, c *container.Container) error

// NewContainer is swapped out by tests.
var NewContainer = container.NewContainer

// WithContainer builds the container from root.AppConfig, runs fn and closes
// the row store afterwards. Every invocation gets its own request id.
func WithContainer(cmd *cobra.Command, fn ContainerFunc) error {
	if root.AppConfig == nil {
		return fmt.Errorf("configuration not loaded")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := NewContainer(ctx, root.AppConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			c.GetLogger().WithError(cerr).Warn("Failed to close row store")
		}
	}()

	c.GetLogger().Debug("Running command",
		logging.F(logging.FieldCommand, cmd.CommandPath()),
		logging.F(logging.FieldRequestID, uuid.NewString()))
	return fn(ctx, c)
}

// LedgerFunc performs one ledger operation on behalf of actor.
type LedgerFunc func(ctx context.Context, rec *ledger.Recorder, actor string) (ledger.Result, error)

// RunAs checks the --name flag against the known members, runs fn and prints
// the reply.
func RunAs(cmd *cobra.Command, fn LedgerFunc) error {
	return WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		actor := Actor(cmd)
		rec := c.GetRecorder()
		if err := rec.CheckMember(ctx, actor); err != nil {
			return PrintReply(cmd, ledger.Result{}, err)
		}
		res, err := fn(ctx, rec, actor)
		return PrintReply(cmd, res, err)
	})
}

// PrintReply writes the user-facing reply for an operation outcome and passes
// the error through so the exit status reflects it.
func PrintReply(cmd *cobra.Command, res ledger.Result, err error) error {
	if _, werr := fmt.Fprintln(cmd.OutOrStdout(), ledger.Reply(res, err)); werr != nil {
		return werr
	}
	return err
}

// Actor reads the --name flag, which every ledger command requires.
func Actor(cmd *cobra.Command) string {
	name, _ := cmd.Flags().GetString("name")
	return strings.TrimSpace(name)
}

// AddActorFlags registers the --name and --notes flags shared by the ledger commands.
func AddActorFlags(cmd *cobra.Command, nameUsage string) {
	cmd.Flags().StringP("name", "n", "", nameUsage)
	cmd.Flags().String("notes", "", "Any notes you might want to add")
	_ = cmd.MarkFlagRequired("name")
}

// Notes reads the --notes flag.
func Notes(cmd *cobra.Command) string {
	notes, _ := cmd.Flags().GetString("notes")
	return notes
}
