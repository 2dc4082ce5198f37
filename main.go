package main

import (
	"strings"

	"github.com/TalShar783/Taskmaster/cmd/balance"
	"github.com/TalShar783/Taskmaster/cmd/bounty"
	"github.com/TalShar783/Taskmaster/cmd/earn"
	"github.com/TalShar783/Taskmaster/cmd/export"
	"github.com/TalShar783/Taskmaster/cmd/list"
	"github.com/TalShar783/Taskmaster/cmd/record"
	"github.com/TalShar783/Taskmaster/cmd/roll"
	"github.com/TalShar783/Taskmaster/cmd/root"
	"github.com/TalShar783/Taskmaster/cmd/serve"
	"github.com/TalShar783/Taskmaster/cmd/spend"
	"github.com/TalShar783/Taskmaster/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Configure the global log level before anything logs
	configureLogLevelDirectly()

	// 3. Initialize root command flags
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(record.Cmd)
	root.Cmd.AddCommand(bounty.Cmd)
	root.Cmd.AddCommand(earn.Cmd)
	root.Cmd.AddCommand(spend.Cmd)
	root.Cmd.AddCommand(balance.Cmd)
	root.Cmd.AddCommand(list.Cmd)
	root.Cmd.AddCommand(roll.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	if envFile := config.FindEnvFile(); envFile != "" {
		_ = godotenv.Load(envFile)
	}
}

// configureLogLevelDirectly sets the global logrus level from TASKMASTER_LOG_LEVEL
func configureLogLevelDirectly() {
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.GetEnv("TASKMASTER_LOG_LEVEL", "info")))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		root.Log.Fatalf("taskmaster: %v", err)
	}
}
