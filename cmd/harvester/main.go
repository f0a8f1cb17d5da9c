package main

import (
	"context"
	"os"
	"time"

	"leadharvest-backend/cmd/harvester/commands"
	"leadharvest-backend/lib/configutil"
	configlibsql "leadharvest-backend/lib/configutil/libsql"
	"leadharvest-backend/lib/fetcher"
	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/platforms/beatport"
	"leadharvest-backend/lib/platforms/toptracker"
	"leadharvest-backend/lib/serviceutil"
	"leadharvest-backend/lib/telemetry"
	"leadharvest-backend/services/backfill"
	"leadharvest-backend/services/discovery"
	"leadharvest-backend/services/enrich"
	"leadharvest-backend/services/ingest"
	"leadharvest-backend/services/oracle"
	"leadharvest-backend/services/resolver"
	"leadharvest-backend/services/scoring"
)

type ToptrackerConfig struct {
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	StaticCookie string   `json:"static_cookie"`
	Genres       []string `json:"genres"`
}

type EnrichmentConfig struct {
	ApiKey  string `json:"api_key"`
	BaseUrl string `json:"base_url"`
}

type Config struct {
	Database   configlibsql.Struct `json:"database"`
	Toptracker ToptrackerConfig    `json:"toptracker"`
	Enrichment EnrichmentConfig    `json:"enrichment"`
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("harvester.json5")
	if err != nil {
		serviceutil.Fatal("failed to read harvester.json5", err)
	}

	tel, err := telemetry.SetupFromEnv(ctx, "harvester")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if err == nil {
		defer tel.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}

	database, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	store := leadstore.NewStore(database)

	client := beatport.NewClient(fetcher.Options{})

	// the gated source stays nil without credentials, commands that need
	// it fail with a readable error
	var session *toptracker.SessionStore
	creds := toptracker.Credentials{
		Email:        config.Toptracker.Email,
		Password:     config.Toptracker.Password,
		StaticCookie: config.Toptracker.StaticCookie,
	}
	if creds.StaticCookie != "" || (creds.Email != "" && creds.Password != "") {
		session, err = toptracker.NewSessionStore(toptracker.SessionOptions{
			Credentials: creds,
			Fetcher:     fetcher.Options{Timeout: time.Second * 30},
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize gated session", err)
		}
	}

	commands.ExecuteContext(ctx, commands.App{
		Store:     store,
		Discovery: discovery.NewService(store, client, discovery.Options{}),
		Ingest: ingest.NewService(store, client, session, ingest.Options{
			Genres: config.Toptracker.Genres,
		}),
		Backfill: backfill.NewService(store, session, backfill.Options{
			Genres: config.Toptracker.Genres,
		}),
		Scoring:  scoring.NewService(store),
		Oracle:   oracle.NewService(client, session),
		Resolver: resolver.NewService(store),
		Enrich: enrich.NewService(store, enrich.Options{
			APIKey:  config.Enrichment.ApiKey,
			BaseUrl: config.Enrichment.BaseUrl,
		}),
	})
}
