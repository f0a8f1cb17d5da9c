package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	linkCmd.AddCommand(linkAddCmd)
	linkCmd.AddCommand(linkSuggestCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(enrichCmd)
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Manages manual raw-name to artist links.",
}

var linkAddCmd = &cobra.Command{
	Use:   "add <raw name> <artist id>",
	Short: "Pins a raw chart name to a canonical artist.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Resolver.Link(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("linked %q -> %s\n", args[0], args[1])
		return nil
	},
}

var linkSuggestCmd = &cobra.Command{
	Use:   "suggest <raw name>",
	Short: "Suggests canonical artists for a raw chart name.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suggestions, err := app.Resolver.Suggest(cmd.Context(), args[0], 10)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"artist id", "name", "correlation"})
		for _, s := range suggestions {
			t.AppendRow(table.Row{s.Artist.ArtistID, s.Artist.Name, fmt.Sprintf("%.3f", s.Correlation)})
		}
		t.Render()
		return nil
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich <artist id>",
	Short: "Fetches (or shows the cached) enrichment for an artist.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.Enrich.Enrich(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println("role:   ", result.Role)
		fmt.Println("bio:    ", result.BioSummary)
		fmt.Println("insight:", result.Insight)
		fmt.Println("as of:  ", result.EnrichedAt)
		return nil
	},
}
