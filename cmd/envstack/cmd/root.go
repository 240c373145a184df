// Package cmd implements the CLI commands for the envstack tool.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/envstack/envstack/internal/config"
	"github.com/envstack/envstack/internal/constants"
	"github.com/envstack/envstack/internal/logger"
)

var (
	configFile      string
	debug           bool
	noCreateMissing bool

	signalStop context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   constants.ProjectName,
	Short: "Compose and deploy CloudFormation environments",
	Long: fmt.Sprintf(`%s - %s
Renders a tree of CloudFormation templates from an environment config,
uploads the child templates to S3, and drives the root stack through
create, deploy, and delete.`,
		constants.ProjectName, *constants.GetVersion()),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		startTime := time.Now().UTC()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		signalStop = stop // Released in Execute() after the command returns
		ctx = context.WithValue(ctx, constants.StartTimeCtxKey, startTime)

		prefs, err := config.LoadPrefs()
		if err != nil {
			return fmt.Errorf("error loading preferences: %w", err)
		}

		logLevel := prefs.GetLogLevel()
		if debug {
			logLevel = slog.LevelDebug
		}
		logger.Initialize(constants.CLI, logLevel)

		cmd.SetContext(context.WithValue(ctx, constants.PrefsCtxKey, prefs))
		return nil
	},
}

// Execute runs the root command and releases the signal watcher.
func Execute() {
	err := rootCmd.Execute()
	if signalStop != nil {
		signalStop()
	}

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "",
		"Environment config file (default: the config_file preference, then config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debugging logs and verbose stack event output")
	rootCmd.PersistentFlags().BoolVar(&noCreateMissing, "no-create-missing", false,
		"Fail when config or catalog files are absent instead of writing factory defaults")
}

// getPrefsFromContext retrieves the CLI preferences from the command context.
// Commands run with empty preferences when loading failed upstream.
func getPrefsFromContext(cmd *cobra.Command) *config.Prefs {
	prefs, ok := cmd.Context().Value(constants.PrefsCtxKey).(*config.Prefs)
	if !ok || prefs == nil {
		return &config.Prefs{}
	}
	return prefs
}

// resolveConfigFile returns the environment config path: the --config-file
// flag wins, then the config_file preference, then the default filename.
func resolveConfigFile(prefs *config.Prefs) string {
	if configFile != "" {
		return configFile
	}
	if prefs.ConfigFile != "" {
		return prefs.ConfigFile
	}
	return constants.DefaultEnvironmentConfigFile
}

// RootCmd returns the root command for use by tools like doc generators.
func RootCmd() *cobra.Command {
	return rootCmd
}
