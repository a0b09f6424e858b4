// Package main is the entry point for the conflux CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confluxhq/conflux/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflux",
		Short: "Conflux convention chat engine",
		Long:  `Conflux indexes convention data into a vector store and answers attendee questions through a configurable LLM provider.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(reindexCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
