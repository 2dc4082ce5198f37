// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/TalShar783/Taskmaster/internal/dateutils"
	"github.com/TalShar783/Taskmaster/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DiscordConfig holds the bot credentials and reply behavior.
type DiscordConfig struct {
	Token                  string `mapstructure:"token" yaml:"-"` // Never serialize the token
	GuildID                string `mapstructure:"guild_id" yaml:"guild_id"`
	AppID                  string `mapstructure:"app_id" yaml:"app_id"`
	ReplyRetryDelaySeconds int    `mapstructure:"reply_retry_delay_seconds" yaml:"reply_retry_delay_seconds"`
}

// StoreConfig selects the row store backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// SheetsConfig configures the Google Sheets backend.
type SheetsConfig struct {
	SpreadsheetID     string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"`
	CredentialsFile   string `mapstructure:"credentials_file" yaml:"credentials_file"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MemoryConfig configures the in-memory backend.
type MemoryConfig struct {
	FixtureFile string `mapstructure:"fixture_file" yaml:"fixture_file"`
	Persist     bool   `mapstructure:"persist" yaml:"persist"`
}

// LedgerConfig holds the bookkeeping conventions of the household sheet.
type LedgerConfig struct {
	BroadcastName       string `mapstructure:"broadcast_name" yaml:"broadcast_name"`
	NotesSuffix         string `mapstructure:"notes_suffix" yaml:"notes_suffix"`
	Timezone            string `mapstructure:"timezone" yaml:"timezone"`
	DefaultBountyReward string `mapstructure:"default_bounty_reward" yaml:"default_bounty_reward"`
}

// Config represents the complete application configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Discord DiscordConfig `mapstructure:"discord" yaml:"discord"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Sheets  SheetsConfig  `mapstructure:"sheets" yaml:"sheets"`
	SQLite  SQLiteConfig  `mapstructure:"sqlite" yaml:"sqlite"`
	Memory  MemoryConfig  `mapstructure:"memory" yaml:"memory"`
	Tables  models.Tables `mapstructure:"tables" yaml:"tables"`
	Ledger  LedgerConfig  `mapstructure:"ledger" yaml:"ledger"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFile("")
}

// InitializeConfigFile is InitializeConfig with an explicit config file, which
// then must exist. An empty path searches the default locations.
func InitializeConfigFile(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.taskmaster")
		v.AddConfigPath(".taskmaster")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("TASKMASTER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. Secrets keep their conventional unprefixed names
	secrets := map[string]string{
		"discord.token":           "DISCORD_TOKEN",
		"discord.guild_id":        "DISCORD_GUILD_ID",
		"discord.app_id":          "DISCORD_APP_ID",
		"sheets.credentials_file": "GOOGLE_APPLICATION_CREDENTIALS",
	}
	for key, env := range secrets {
		prefixed := "TASKMASTER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			fmt.Printf("Warning: failed to bind %s environment variable: %v\n", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("discord.token", "")
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("discord.app_id", "")
	v.SetDefault("discord.reply_retry_delay_seconds", 3)

	v.SetDefault("store.backend", BackendSheets)

	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "keyfile.json")
	v.SetDefault("sheets.requests_per_minute", 60)

	v.SetDefault("sqlite.path", "taskmaster.db")

	v.SetDefault("memory.fixture_file", "")
	v.SetDefault("memory.persist", false)

	tables := models.DefaultTables()
	v.SetDefault("tables.transactions", tables.Transactions)
	v.SetDefault("tables.tasks", tables.Tasks)
	v.SetDefault("tables.totals", tables.Totals)
	v.SetDefault("tables.bounties", tables.Bounties)

	v.SetDefault("ledger.broadcast_name", models.BroadcastName)
	v.SetDefault("ledger.notes_suffix", models.NotesSuffix)
	v.SetDefault("ledger.timezone", "Local")
	v.SetDefault("ledger.default_bounty_reward", models.DefaultBountyReward)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.Store.Backend {
	case BackendSheets:
		if config.Sheets.RequestsPerMinute < 1 || config.Sheets.RequestsPerMinute > 1000 {
			return fmt.Errorf("sheets.requests_per_minute must be between 1 and 1000, got: %d", config.Sheets.RequestsPerMinute)
		}
	case BackendSQLite:
		if config.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid store backend: %s (must be 'sheets', 'sqlite' or 'memory')", config.Store.Backend)
	}

	if config.Discord.ReplyRetryDelaySeconds < 0 || config.Discord.ReplyRetryDelaySeconds > 60 {
		return fmt.Errorf("discord.reply_retry_delay_seconds must be between 0 and 60, got: %d", config.Discord.ReplyRetryDelaySeconds)
	}

	if _, err := dateutils.LoadLocation(config.Ledger.Timezone); err != nil {
		return fmt.Errorf("invalid ledger.timezone: %s", config.Ledger.Timezone)
	}

	if config.Tables.Transactions == "" || config.Tables.Tasks == "" ||
		config.Tables.Totals == "" || config.Tables.Bounties == "" {
		return fmt.Errorf("table names must not be empty")
	}

	if strings.TrimSpace(config.Ledger.BroadcastName) == "" {
		return fmt.Errorf("ledger.broadcast_name must not be empty")
	}

	return nil
}

// ValidateForServe checks the settings only the chat bot needs.
func (c *Config) ValidateForServe() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN required to run the bot")
	}
	if c.Discord.GuildID == "" {
		return fmt.Errorf("DISCORD_GUILD_ID required to register commands")
	}
	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
