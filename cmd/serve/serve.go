// Package serve runs the Discord bot
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TalShar783/Taskmaster/cmd/common"
	"github.com/TalShar783/Taskmaster/cmd/root"
	"github.com/TalShar783/Taskmaster/internal/bot"
	"github.com/TalShar783/Taskmaster/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Discord bot",
	Long: `Connect to Discord, register the slash commands in the configured guild and
record tasks, bounties and transactions until interrupted.`,
	RunE: serveFunc,
}

func serveFunc(cmd *cobra.Command, args []string) error {
	if err := root.AppConfig.ValidateForServe(); err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		cfg := c.GetConfig()
		session, err := bot.NewDiscordSession(cfg.Discord.Token)
		if err != nil {
			return err
		}
		b := bot.New(session, c.GetRecorder(), c.GetLogger(), bot.Options{
			GuildID:    cfg.Discord.GuildID,
			AppID:      cfg.Discord.AppID,
			RetryDelay: time.Duration(cfg.Discord.ReplyRetryDelaySeconds) * time.Second,
		})
		return b.Run(ctx)
	})
}
