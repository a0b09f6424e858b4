package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/confluxhq/conflux"
	"github.com/confluxhq/conflux/internal/log"
)

func reindexCmd() *cobra.Command {
	var (
		envFile      string
		conventionID int64
	)

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the vector index",
		Long: `Rebuild the vector index for all active conventions, or for a
single convention with --convention.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindex(cmd.Context(), envFile, conventionID)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().Int64Var(&conventionID, "convention", 0, "Re-index only this convention")

	return cmd
}

func runReindex(ctx context.Context, envFile string, conventionID int64) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cfg).Slog()

	client, err := conflux.New(cfg, conflux.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create conflux client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close conflux client", slog.Any("error", err))
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	if conventionID != 0 {
		indexed, err := client.Indexing.IndexConvention(ctx, conventionID)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d documents for convention %d\n", indexed, conventionID)
		return nil
	}

	report, err := client.Indexing.ReindexAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("re-indexed %d conventions (%d documents), %d failed\n",
		report.SuccessCount, report.TotalDocumentsIndexed, report.FailureCount)
	for _, reindexErr := range report.Errors {
		fmt.Printf("  error: %v\n", reindexErr)
	}
	if report.FailureCount > 0 {
		return fmt.Errorf("%d conventions failed to re-index", report.FailureCount)
	}
	return nil
}
