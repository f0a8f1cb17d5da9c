package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	backfillGenre *string
	backfillFrom  *string
	backfillTo    *string
)

func init() {
	backfillGenre = backfillCmd.Flags().String("genre", "", "Genre slug, or __all__ for every configured genre.")
	backfillFrom = backfillCmd.Flags().String("from", "", "First date of the range (YYYY-MM-DD).")
	backfillTo = backfillCmd.Flags().String("to", "", "Last date of the range (YYYY-MM-DD).")
	backfillCmd.MarkFlagRequired("genre")
	backfillCmd.MarkFlagRequired("from")
	backfillCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(backfillCmd)
}

var backfillCmd = &cobra.Command{
	Use:   "backfill --genre <slug> --from <YYYY-MM-DD> --to <YYYY-MM-DD>",
	Short: "Fetches a historical date range from the gated source.",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.Backfill.Run(cmd.Context(), *backfillGenre, *backfillFrom, *backfillTo)
		if err != nil {
			return err
		}
		printErrors(result.Errors)
		fmt.Printf("dates: %d  charts: %d  inserted: %d  skipped: %d  filtered: %d\n",
			result.DatesRequested, result.ChartsFetched,
			result.TotalInserted, result.TotalSkipped, result.Filtered)
		if result.Hint != "" {
			fmt.Println("hint:", result.Hint)
		}
		return nil
	},
}
