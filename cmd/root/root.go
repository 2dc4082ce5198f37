// Package root contains the root command for the application
package root

import (
	"github.com/TalShar783/Taskmaster/internal/config"
	"github.com/TalShar783/Taskmaster/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to all commands
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	Backend    string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppConfig is loaded before any subcommand runs
	AppConfig *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "taskmaster",
		Short: "A chore ledger for the household spreadsheet, driven from Discord or the command line.",
		Long: `taskmaster records completed tasks and bounties as play-money transactions
in a shared spreadsheet. Run "taskmaster serve" to start the Discord bot, or use the
other commands to work with the ledger directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to taskmaster!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return LoadConfig()
		},
	}

	// SharedFlags holds the values of the persistent flags
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default searches ./config.yaml and $HOME/.taskmaster)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level override (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Backend, "backend", "b", "", "Row store backend override (sheets, sqlite, memory)")
}

// LoadConfig reads the configuration, applies the flag overrides and rebuilds Log.
func LoadConfig() error {
	config.LoadEnv(Log)

	cfg, err := config.InitializeConfigFile(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.Backend != "" {
		cfg.Store.Backend = SharedFlags.Backend
	}

	AppConfig = cfg
	Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	Log.Debug("Configuration loaded",
		logging.F(logging.FieldBackend, cfg.Store.Backend))
	return nil
}
