// Package bot exposes the ledger as Discord application commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/TalShar783/Taskmaster/internal/catalog"
	"github.com/TalShar783/Taskmaster/internal/ledger"
	"github.com/TalShar783/Taskmaster/internal/ledgererror"
	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxMessageLength is the longest message Discord accepts.
const MaxMessageLength = 2000

const maxChoiceLength = 100

// Session is the part of the Discord session the command handlers use.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Gateway is a Session that can also connect and dispatch events.
type Gateway interface {
	Session
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
}

// Options configures a Bot.
type Options struct {
	GuildID string
	// AppID is taken from the Ready event when empty.
	AppID      string
	RetryDelay time.Duration
}

// Bot routes Discord interactions to the ledger recorder.
type Bot struct {
	session    Session
	recorder   *ledger.Recorder
	logger     logging.Logger
	guildID    string
	appID      string
	retryDelay time.Duration
	newID      func() string
}

// New creates a Bot that answers through session.
func New(session Session, recorder *ledger.Recorder, logger logging.Logger, opts Options) *Bot {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Bot{
		session:    session,
		recorder:   recorder,
		logger:     logger,
		guildID:    opts.GuildID,
		appID:      opts.AppID,
		retryDelay: opts.RetryDelay,
		newID:      uuid.NewString,
	}
}

// NewDiscordSession creates a discordgo session for a bot token.
func NewDiscordSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds
	return dg, nil
}

func (b *Bot) catalog() *catalog.Catalog {
	return b.recorder.Catalog()
}

// Run connects the gateway, registers the commands once the session is ready
// and serves interactions until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	gw, ok := b.session.(Gateway)
	if !ok {
		return fmt.Errorf("session cannot connect to the gateway")
	}

	if err := b.catalog().RefreshAll(ctx); err != nil {
		b.logger.WithError(err).Warn("Initial catalog load incomplete")
	}

	removeReady := gw.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.onReady(ctx, r)
	})
	defer removeReady()
	removeInteraction := gw.AddHandler(func(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
		b.HandleInteraction(ctx, ic.Interaction)
	})
	defer removeInteraction()

	if err := gw.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.logger.Info("Bot connected, press Ctrl+C to stop")

	<-ctx.Done()
	b.logger.Info("Shutting down bot")
	if err := gw.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

func (b *Bot) onReady(ctx context.Context, r *discordgo.Ready) {
	if r == nil || r.User == nil {
		return
	}
	b.logger.Info("Logged in",
		logging.F("username", r.User.Username),
		logging.F("user_id", r.User.ID))
	appID := b.appID
	if appID == "" {
		appID = r.User.ID
	}
	if err := b.RegisterCommands(ctx, appID); err != nil {
		b.logger.WithError(err).Error("Failed to register commands")
	}
}

// RegisterCommands replaces the guild's application commands with Commands().
func (b *Bot) RegisterCommands(_ context.Context, appID string) error {
	cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, Commands())
	if err != nil {
		return ledgererror.NewExternal("discord", "register commands", err)
	}
	b.logger.Info("Registered commands",
		logging.F(logging.FieldCount, len(cmds)),
		logging.F("guild_id", b.guildID))
	return nil
}

// HandleInteraction answers one slash command or autocomplete request.
func (b *Bot) HandleInteraction(ctx context.Context, i *discordgo.Interaction) {
	if i == nil {
		return
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand, discordgo.InteractionApplicationCommandAutocomplete:
	default:
		return
	}

	data := i.ApplicationCommandData()
	log := b.logger.WithFields(
		logging.F(logging.FieldRequestID, b.newID()),
		logging.F(logging.FieldCommand, data.Name),
		logging.F("discord_user", invoker(i)))
	opts := optionMap(data.Options)

	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		b.autocomplete(ctx, i, opts, log)
		return
	}

	log.Debug("Handling command")
	reply := b.dispatch(ctx, data.Name, opts, log)
	if err := b.sendReply(ctx, i, reply, log); err != nil {
		log.WithError(err).Error("Reply was not delivered")
	}
}

func (b *Bot) dispatch(ctx context.Context, name string, opts options, log logging.Logger) string {
	switch name {
	case CmdRecord:
		return b.withMember(ctx, opts, func(actor string) string {
			return ledger.Reply(b.recorder.RecordTask(ctx, opts.str(OptTask), actor, opts.str(OptNotes)))
		})
	case CmdBounty:
		return b.withMember(ctx, opts, func(actor string) string {
			return ledger.Reply(b.recorder.CompleteBounty(ctx, opts.str(OptBounty), actor, opts.str(OptNotes)))
		})
	case CmdEarn:
		return b.withMember(ctx, opts, func(actor string) string {
			return ledger.Reply(b.recorder.Earn(ctx, opts.str(OptAmount), opts.str(OptReason), actor, opts.str(OptNotes)))
		})
	case CmdSpend:
		return b.withMember(ctx, opts, func(actor string) string {
			amount, err := decimal.NewFromString(opts.str(OptAmount))
			if err != nil {
				return ledger.Reply(ledger.Result{}, &ledgererror.ValidationError{
					Field: OptAmount, Value: opts.str(OptAmount), Reason: "not a number"})
			}
			return ledger.Reply(b.recorder.Spend(ctx, amount, opts.str(OptReason), actor, opts.str(OptNotes)))
		})
	case CmdCheckBalance:
		return b.withMember(ctx, opts, func(actor string) string {
			bal, err := b.recorder.CheckBalance(ctx, actor)
			if err != nil {
				return ledger.Reply(ledger.Result{}, err)
			}
			return ledger.BalanceMessage(bal)
		})
	case CmdTasks:
		return b.listTasks(ctx)
	case CmdReset:
		return ledger.Reply(b.recorder.Reset(ctx))
	case CmdDebugSwitch:
		return b.toggleDebug(log)
	}
	log.Warn("Unknown command")
	return fmt.Sprintf("Unknown command %q.", name)
}

// withMember checks the name option against the known members before running fn.
func (b *Bot) withMember(ctx context.Context, opts options, fn func(actor string) string) string {
	name := strings.TrimSpace(opts.str(OptName))
	if err := b.recorder.CheckMember(ctx, name); err != nil {
		return ledger.Reply(ledger.Result{}, err)
	}
	return fn(name)
}

func (b *Bot) listTasks(ctx context.Context) string {
	if err := b.catalog().EnsureFresh(ctx, models.KindTask); err != nil {
		return ledger.Reply(ledger.Result{}, err)
	}
	entries := b.catalog().Entries(models.KindTask)
	if len(entries) == 0 {
		return "No tasks registered."
	}

	var sb strings.Builder
	sb.WriteString("Tasks:")
	for _, e := range entries {
		line := fmt.Sprintf("\n- %s: %s", e.Name, e.RewardExpression)
		if e.AverageHint != "" && e.AverageHint != models.MissingReward {
			line += fmt.Sprintf(" (avg %s)", e.AverageHint)
		}
		if sb.Len()+len(line) > MaxMessageLength-4 {
			sb.WriteString("\n...")
			break
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func (b *Bot) toggleDebug(log logging.Logger) string {
	setter, ok := b.logger.(logging.LevelSetter)
	if !ok {
		return "Debug switching is not available."
	}
	next, reply := "debug", "Debug enabled."
	if setter.Level() == "debug" {
		next, reply = "info", "Debug disabled."
	}
	if err := setter.SetLevel(next); err != nil {
		log.WithError(err).Error("Failed to switch log level")
		return ledger.GenericFailure
	}
	b.logger.Info(reply)
	return reply
}

func (b *Bot) autocomplete(ctx context.Context, i *discordgo.Interaction, opts options, log logging.Logger) {
	choices := []*discordgo.ApplicationCommandOptionChoice{}
	if focused := opts.focused(); focused != nil {
		if kind, ok := autocompleteKinds[focused.Name]; ok {
			if err := b.catalog().EnsureFresh(ctx, kind); err != nil {
				log.WithError(err).Warn("Autocomplete served without a fresh catalog",
					logging.F(logging.FieldKind, string(kind)))
			}
			query, _ := focused.Value.(string)
			for _, name := range b.catalog().Suggest(kind, query, catalog.MaxSuggestions) {
				choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
					Name:  truncate(name, maxChoiceLength),
					Value: name,
				})
			}
		}
	}

	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		log.WithError(err).Debug("Autocomplete response dropped")
	}
}

// sendReply answers the interaction. If Discord no longer knows the
// interaction, it waits the retry delay and posts to the channel instead.
func (b *Bot) sendReply(ctx context.Context, i *discordgo.Interaction, content string, log logging.Logger) error {
	content = truncate(content, MaxMessageLength)
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err == nil {
		return nil
	}
	if !isUnknownInteraction(err) {
		return ledgererror.NewExternal("discord", "respond to interaction", err)
	}

	log.WithError(err).Warn("Interaction expired, replying in channel instead",
		logging.F("retry_delay", b.retryDelay.String()))
	if err := sleep(ctx, b.retryDelay); err != nil {
		return err
	}
	if _, err := b.session.ChannelMessageSend(i.ChannelID, content); err != nil {
		return ledgererror.NewExternal("discord", "send channel message", err)
	}
	log.Debug("Channel reply sent")
	return nil
}

func isUnknownInteraction(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownInteraction {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func invoker(i *discordgo.Interaction) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.Username
	case i.User != nil:
		return i.User.Username
	}
	return ""
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
