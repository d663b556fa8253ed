package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/applytrack/applytrack/internal/interfaces/cli/migrate"
	"github.com/applytrack/applytrack/internal/interfaces/cli/server"
	"github.com/applytrack/applytrack/internal/shared/version"
)

// @title ApplyTrack API
// @version 1.0
// @description Usage gating for the AI job application features: per-plan rate limits, lifetime allowances and anonymous previews.
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	rootCmd := &cobra.Command{
		Use:     "applytrack",
		Short:   "ApplyTrack - usage gating for AI job application tools",
		Long:    `ApplyTrack serves the AI job application features behind per-plan rate limits, lifetime allowances and an anonymous preview flow.`,
		Version: version.Current(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
