package bot

import (
	"strconv"

	"github.com/TalShar783/Taskmaster/internal/models"

	"github.com/bwmarrin/discordgo"
)

// Command names as registered with Discord.
const (
	CmdRecord       = "record"
	CmdBounty       = "bounty"
	CmdEarn         = "earn"
	CmdSpend        = "spend"
	CmdCheckBalance = "check_balance"
	CmdTasks        = "tasks"
	CmdReset        = "reset"
	CmdDebugSwitch  = "debug_switch"
)

// Option names shared by several commands.
const (
	OptName   = "name"
	OptTask   = "task"
	OptBounty = "bounty"
	OptReason = "reason"
	OptAmount = "amount"
	OptNotes  = "notes"
)

// autocompleteKinds maps an autocompleted option to the catalog it draws from.
var autocompleteKinds = map[string]models.CatalogKind{
	OptName:   models.KindUser,
	OptTask:   models.KindTask,
	OptBounty: models.KindBounty,
}

func nameOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         OptName,
		Description:  description,
		Required:     true,
		Autocomplete: true,
	}
}

func notesOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptNotes,
		Description: description,
	}
}

// Commands returns the application commands the bot registers per guild.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CmdRecord,
			Description: "Record a completed task.",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption("The name of the person who did the task."),
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         OptTask,
					Description:  "The name of the task.",
					Required:     true,
					Autocomplete: true,
				},
				notesOption("Any notes you might want to add."),
			},
		},
		{
			Name:        CmdBounty,
			Description: "Claim a bounty from the bounty board.",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption("The name of the person completing the bounty."),
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         OptBounty,
					Description:  "The name of the bounty being completed.",
					Required:     true,
					Autocomplete: true,
				},
				notesOption("Any additional notes you have."),
			},
		},
		{
			Name:        CmdEarn,
			Description: "Record money earned outside the task list.",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption("The name of the person who earned the money."),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptAmount,
					Description: "The amount earned (a decimal with no $, eg. '4.20', or dice like '1d6').",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptReason,
					Description: "What you did to earn the money.",
				},
				notesOption("Any notes you might want to add."),
			},
		},
		{
			Name:        CmdSpend,
			Description: "Record money spent.",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption("The name of the person who spent the money."),
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        OptAmount,
					Description: "The amount of money spent (a decimal with no $, eg. '4.20').",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptReason,
					Description: "What did you spend the money on?",
				},
				notesOption("Any notes you might want to add."),
			},
		},
		{
			Name:        CmdCheckBalance,
			Description: "Show someone's balance.",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption("The name of the person whose balance you want to check."),
			},
		},
		{
			Name:        CmdTasks,
			Description: "List the tasks and their rewards.",
		},
		{
			Name:        CmdReset,
			Description: "Reload tasks, bounties and names from the spreadsheet.",
		},
		{
			Name:        CmdDebugSwitch,
			Description: "Toggle debug logging.",
		},
	}
}

// options indexes the submitted options of an interaction by name.
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// str returns the option as text. Numbers are formatted without exponent.
func (o options) str(name string) string {
	opt, ok := o[name]
	if !ok || opt == nil {
		return ""
	}
	switch v := opt.Value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// focused returns the option the user is typing into during autocomplete.
func (o options) focused() *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range o {
		if opt != nil && opt.Focused {
			return opt
		}
	}
	return nil
}
