package commands

import (
	"context"
	"fmt"
	"os"

	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/services/backfill"
	"leadharvest-backend/services/discovery"
	"leadharvest-backend/services/enrich"
	"leadharvest-backend/services/ingest"
	"leadharvest-backend/services/oracle"
	"leadharvest-backend/services/resolver"
	"leadharvest-backend/services/scoring"

	"github.com/spf13/cobra"
)

// App carries the wired services; main builds it from harvester.json5.
type App struct {
	Store     leadstore.Store
	Discovery discovery.Service
	Ingest    ingest.Service
	Backfill  backfill.Service
	Scoring   scoring.Service
	Oracle    oracle.Service
	Resolver  resolver.Service
	Enrich    enrich.Service
}

var app App

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "harvester discovers, scrapes and scores music chart data for lead generation.",
}

func ExecuteContext(ctx context.Context, a App) {
	app = a
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printErrors(errs []error) {
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
}
