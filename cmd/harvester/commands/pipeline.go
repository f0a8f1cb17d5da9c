package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(runCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Crawls the public genre index and refreshes the chart catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.Discovery.Run(cmd.Context())
		if err != nil {
			return err
		}
		printErrors(result.Errors)
		fmt.Printf("genres: %d  charts seen: %d  upserted: %d  deactivated: %d\n",
			result.GenresFetched, result.ChartURLsSeen, result.Upserted, result.MarkedInactive)
		return nil
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Recomputes per-artist metrics from the raw chart entries.",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.Scoring.Normalize(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("as of %s: %d artists normalized\n", result.AsOf, result.Artists)
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recomputes lead scores and segments from artist metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.Scoring.Score(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("as of %s: %d artists scored\n", result.AsOf, result.Scored)
		for segment, count := range result.Segments {
			fmt.Printf("  %-10s %d\n", segment, count)
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the full pipeline: discover, ingest, normalize, score.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		slog.Info("pipeline stage", "stage", "discover")
		discovered, err := app.Discovery.Run(ctx)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}
		printErrors(discovered.Errors)

		slog.Info("pipeline stage", "stage", "ingest")
		ingested, err := app.Ingest.Run(ctx, "")
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		printErrors(ingested.Errors)

		slog.Info("pipeline stage", "stage", "normalize")
		normalized, err := app.Scoring.Normalize(ctx)
		if err != nil {
			return fmt.Errorf("normalize: %w", err)
		}

		slog.Info("pipeline stage", "stage", "score")
		scored, err := app.Scoring.Score(ctx)
		if err != nil {
			return fmt.Errorf("score: %w", err)
		}

		fmt.Printf("charts: %d  inserted: %d  skipped: %d  artists: %d  scored: %d\n",
			ingested.ChartsFetched, ingested.Inserted, ingested.Skipped,
			normalized.Artists, scored.Scored)
		return nil
	},
}
