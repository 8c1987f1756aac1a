// Package cmd provides the CLI commands for deckforge.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/logging"
	"github.com/deckforge/deckforge/pkg/version"
)

var (
	cfgFile        string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the deckforge CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deckforge",
		Short: "Generate audience-tailored pitch decks from GitHub repositories",
		Long: `DeckForge turns a GitHub repository into a pitch deck: it indexes the
repo's commits and documentation into a local vector store, retrieves
grounded context, researches the market, and drafts slides plus a
presenter script for a chosen audience.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("deckforge version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to deckforge.yaml")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupEnvironment
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newAudiencesCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupEnvironment loads .env credentials and installs the default
// logger before any command runs.
func setupEnvironment(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if debugMode {
		logCfg.Level = "debug"
		logCfg.WriteToStderr = true
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

// loadConfig resolves configuration, picking up a deckforge.yaml in the
// working directory when --config is not given.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("deckforge.yaml"); err == nil {
			path = "deckforge.yaml"
		}
	}
	return config.Load(path)
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
