package commands

import (
	"fmt"
	"io"
	"os"

	"leadharvest-backend/services/ingest"

	"github.com/spf13/cobra"
)

var (
	ingestDate     *string
	ingestFamilies *[]string
	pasteGenre     *string
	pasteDate      *string
)

func init() {
	ingestDate = ingestCmd.Flags().String("date", "", "Snapshot date (YYYY-MM-DD), defaults to today.")
	ingestFamilies = ingestCmd.Flags().StringSlice("family", nil, "Chart families to ingest, defaults to the configured set.")
	rootCmd.AddCommand(ingestCmd)

	rootCmd.AddCommand(dailyCmd)

	pasteGenre = pasteCmd.Flags().String("genre", "", "Genre slug the pasted chart belongs to.")
	pasteDate = pasteCmd.Flags().String("date", "", "Snapshot date (YYYY-MM-DD), defaults to today.")
	pasteCmd.MarkFlagRequired("genre")
	rootCmd.AddCommand(pasteCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [--date <YYYY-MM-DD>] [--family <name>]",
	Short: "Scrapes every active catalog chart and records today's entries.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := app.Ingest
		if len(*ingestFamilies) > 0 {
			svc = svc.WithFamilies(*ingestFamilies)
		}
		result, err := svc.Run(cmd.Context(), *ingestDate)
		if err != nil {
			return err
		}
		printErrors(result.Errors)
		printIngest(result)
		return nil
	},
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Pulls yesterday and today from the gated source for the configured genres.",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.Ingest.DailyUpdate(cmd.Context())
		if err != nil {
			return err
		}
		printErrors(result.Errors)
		printIngest(result)
		return nil
	},
}

var pasteCmd = &cobra.Command{
	Use:   "paste --genre <slug> [--date <YYYY-MM-DD>] < chart.tsv",
	Short: "Ingests a chart pasted as tab-separated text on stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		result, err := app.Ingest.Paste(cmd.Context(), *pasteGenre, *pasteDate, string(text))
		if err != nil {
			return err
		}
		printIngest(result)
		return nil
	},
}

func printIngest(result ingest.Result) {
	fmt.Printf("charts: %d  inserted: %d  skipped: %d  filtered: %d\n",
		result.ChartsFetched, result.Inserted, result.Skipped, result.Filtered)
}
