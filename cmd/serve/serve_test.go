package serve_test

import (
	"testing"

	"github.com/TalShar783/Taskmaster/cmd/root"
	"github.com/TalShar783/Taskmaster/cmd/serve"
	"github.com/TalShar783/Taskmaster/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestServeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "serve", serve.Cmd.Use)
	assert.Contains(t, serve.Cmd.Short, "Discord bot")
	assert.Contains(t, serve.Cmd.Long, "slash commands")
	assert.NotNil(t, serve.Cmd.RunE)
}

func TestServeCommand_RequiresDiscordSettings(t *testing.T) {
	prev := root.AppConfig
	t.Cleanup(func() { root.AppConfig = prev })
	root.AppConfig = &config.Config{Store: config.StoreConfig{Backend: config.BackendMemory}}

	err := serve.Cmd.RunE(serve.Cmd, nil)
	assert.ErrorContains(t, err, "DISCORD_TOKEN")

	root.AppConfig.Discord.Token = "token"
	err = serve.Cmd.RunE(serve.Cmd, nil)
	assert.ErrorContains(t, err, "DISCORD_GUILD_ID")
}
