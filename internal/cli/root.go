// Package cli implements the qualitygate commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/internal/config"
)

var (
	configPath   string
	debugLogging bool
)

var rootCmd = &cobra.Command{
	Use:   "qualitygate",
	Short: "Wait for a CodeScan analysis and report its quality gate",
	Long: `qualitygate waits for the background analysis submitted by a scanner run to
finish, then fetches and prints the quality gate status of that analysis.
It can also run as a Temporal worker and serve an API for remote checks.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "enable debug logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(workerCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debugLogging {
		cfg.Debug = true
	}
	return cfg, nil
}

func newLogger(development bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
