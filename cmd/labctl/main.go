// Command labctl is the operator CLI for the campaign analytics service: it seeds
// tenant data from CSV exports, renders executive briefs offline and schedules them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PratikDhanave/campaign-analytics-service/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "labctl",
	Short:         "labctl - campaign engagement lab tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var envFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", envOr("APP_ENV", "development"), "Logging environment (development or production)")
	rootCmd.AddCommand(seedCmd, briefCmd, scheduleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "labctl:", err)
		os.Exit(1)
	}
}

// newLogger builds the zap logger shared by every subcommand.
func newLogger() (*zap.Logger, error) {
	log, err := logger.New(envFlag)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return log, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
