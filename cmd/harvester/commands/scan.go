package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Fetches and parses a chart URL without writing anything.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.Oracle.Scan(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("platform: %s  family: %s  genre: %s  strategy: %s  rows: %d  filtered: %d\n",
			result.Platform, result.ChartFamily, result.GenreSlug,
			result.Strategy, result.RowCount, result.Filtered)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "artist"})
		for i, name := range result.Artists {
			t.AppendRow(table.Row{i + 1, name})
		}
		t.Render()
		return nil
	},
}
