package commands

import (
	"os"

	"leadharvest-backend/lib/leadstore/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var leadsSegment *string

func init() {
	leadsSegment = leadsCmd.Flags().String("segment", "", "Only show leads in this segment.")
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(catalogCmd)
}

var leadsCmd = &cobra.Command{
	Use:   "leads [--segment <name>]",
	Short: "Lists scored leads, best first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var scores []db.LeadScore
		var err error
		if *leadsSegment != "" {
			scores, err = app.Store.Queries().ListLeadScoresBySegment(cmd.Context(), *leadsSegment)
		} else {
			scores, err = app.Store.Queries().ListLeadScores(cmd.Context())
		}
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"artist", "segment", "score", "as of"})
		for _, s := range scores {
			t.AppendRow(table.Row{s.ArtistName, s.Segment, s.Score, s.AsOf})
		}
		t.Render()
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Lists the discovered chart catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		charts, err := app.Store.Queries().ListCatalog(cmd.Context())
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"id", "platform", "family", "genre", "active", "url"})
		for _, c := range charts {
			t.AppendRow(table.Row{c.ID, c.Platform, c.ChartFamily, c.GenreSlug, c.IsActive == 1, c.Url})
		}
		t.Render()
		return nil
	},
}
