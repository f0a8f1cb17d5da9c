// Package ingest turns chart pages into chart_entries rows: fetch, parse,
// resolve artists/labels/tracks, insert idempotently. It covers the
// catalog-driven public platform run, single-url ingestion, the gated
// source's daily update and the TSV paste fallback.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/platforms/beatport"
	"leadharvest-backend/lib/platforms/toptracker"
	"leadharvest-backend/lib/timezone"
	"leadharvest-backend/services/resolver"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("leadharvest.services.ingest")

const defaultGatedDelay = 1500 * time.Millisecond

type Options struct {
	// chart families ingested from the catalog; defaults to the two
	// track families
	Families []string
	// gated-source genre slugs for DailyUpdate
	Genres []string
	// delay between gated requests
	GatedDelay time.Duration
}

type Service struct {
	store    leadstore.Store
	qry      *db.Queries
	resolver resolver.Service
	client   beatport.Client
	// nil when the gated source is not configured
	session *toptracker.SessionStore
	opts    Options
}

func NewService(store leadstore.Store, client beatport.Client, session *toptracker.SessionStore, opts Options) Service {
	if len(opts.Families) == 0 {
		opts.Families = []string{beatport.FamilyTopTracks, beatport.FamilyHypeTracks}
	}
	if opts.GatedDelay == 0 {
		opts.GatedDelay = defaultGatedDelay
	}
	return Service{
		store:    store,
		qry:      store.Queries(),
		resolver: resolver.NewService(store),
		client:   client,
		session:  session,
		opts:     opts,
	}
}

// WithFamilies returns a copy of the service ingesting only the given chart
// families, used for one-off CLI overrides.
func (s Service) WithFamilies(families []string) Service {
	if len(families) > 0 {
		s.opts.Families = families
	}
	return s
}

type Result struct {
	ChartsFetched int
	Inserted      int64
	Skipped       int64
	Filtered      int
	Errors        []error
}

func (r *Result) merge(other Result) {
	r.ChartsFetched += other.ChartsFetched
	r.Inserted += other.Inserted
	r.Skipped += other.Skipped
	r.Filtered += other.Filtered
	r.Errors = append(r.Errors, other.Errors...)
}

// Run ingests every active catalog chart of the configured families for one
// snapshot date (defaults to today). Per-chart failures are counted and the
// run continues.
func (s Service) Run(ctx context.Context, date string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	if date == "" {
		date = timezone.Today()
	}
	span.SetAttributes(attribute.String("date", date))

	charts, err := s.qry.ListActiveCharts(ctx, db.ListActiveChartsParams{
		Platform: beatport.Platform,
		Families: s.opts.Families,
	})
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, chart := range charts {
		chartResult, err := s.ingestChart(ctx, chart, date)
		if err != nil {
			slog.WarnContext(ctx, "chart ingest failed", "url", chart.Url, "err", err)
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", chart.Url, err))
			continue
		}
		result.merge(chartResult)
	}

	slog.InfoContext(ctx, "ingest run complete",
		"date", date,
		"charts", result.ChartsFetched,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}

// IngestURL ingests a single chart page, inserting its catalog row first if
// the url is new. Family defaults from classification when empty.
func (s Service) IngestURL(ctx context.Context, chartUrl, family, date string) (Result, error) {
	ctx, span := tracer.Start(ctx, "IngestURL")
	defer span.End()

	if date == "" {
		date = timezone.Today()
	}
	if family == "" {
		family = beatport.ClassifyFamily(chartUrl, "")
	}

	chart, err := s.store.GetOrCreateChart(ctx, leadstore.CatalogEntry{
		Platform:    beatport.Platform,
		ChartFamily: family,
		GenreSlug:   beatport.GenreSlugFromURL(chartUrl),
		Url:         chartUrl,
	})
	if err != nil {
		return Result{}, err
	}
	return s.ingestChart(ctx, chart, date)
}

func (s Service) ingestChart(ctx context.Context, chart db.ChartsCatalog, date string) (Result, error) {
	ctx, span := tracer.Start(ctx, "ingestChart")
	defer span.End()
	span.SetAttributes(attribute.String("url", chart.Url))

	html, err := s.client.FetchPage(ctx, chart.Url)
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		return Result{}, err
	}

	parsed, err := beatport.ParseChart(ctx, html)
	if err != nil {
		span.SetStatus(codes.Error, "parse failed")
		return Result{}, err
	}

	rows := make([]entryRow, len(parsed.Rows))
	for i, r := range parsed.Rows {
		rows[i] = entryRow{
			Position:    r.Position,
			TrackTitle:  r.TrackTitle,
			ArtistName:  r.ArtistName,
			PlatformID:  r.ArtistID,
			ArtistsFull: r.ArtistsFull,
			LabelName:   r.LabelName,
			Released:    r.Released,
		}
	}
	result, err := s.insertRows(ctx, beatport.Platform, chart, date, rows)
	if err != nil {
		return Result{}, err
	}
	result.ChartsFetched = 1
	result.Filtered = parsed.Filtered
	return result, nil
}

// entryRow is the platform-neutral parsed row shape both sources reduce to.
type entryRow struct {
	Position    int
	Movement    string
	TrackTitle  string
	ArtistName  string
	PlatformID  string
	ArtistsFull string
	LabelName   string
	Released    string
}

func (s Service) insertRows(ctx context.Context, platform string, chart db.ChartsCatalog, date string, rows []entryRow) (Result, error) {
	raws := make([]resolver.RawArtist, 0, len(rows))
	for _, r := range rows {
		if r.ArtistName == "" {
			continue
		}
		raws = append(raws, resolver.RawArtist{Name: r.ArtistName, PlatformID: r.PlatformID})
	}
	artists, err := s.resolver.ResolveBulk(ctx, platform, raws)
	if err != nil {
		return Result{}, err
	}

	entries := make([]db.InsertChartEntryParams, 0, len(rows))
	for _, r := range rows {
		var artistID string
		if artist, ok := artists[r.ArtistName]; ok {
			artistID = artist.ArtistID

			label, err := s.resolver.ResolveLabel(ctx, r.LabelName)
			if err != nil {
				return Result{}, err
			}
			if err := s.resolver.RecordTrack(ctx, artist.ArtistID, r.TrackTitle, label.ID); err != nil {
				return Result{}, err
			}
		}

		entries = append(entries, db.InsertChartEntryParams{
			ChartID:       chart.ID,
			ChartFamily:   chart.ChartFamily,
			SnapshotDate:  date,
			Position:      int64(r.Position),
			TrackTitle:    r.TrackTitle,
			ArtistNameRaw: r.ArtistName,
			ArtistID:      artistID,
			ArtistsFull:   r.ArtistsFull,
			LabelName:     r.LabelName,
			Released:      r.Released,
			Movement:      r.Movement,
			GenreSlug:     chart.GenreSlug,
		})
	}

	inserted, err := s.store.InsertEntries(ctx, entries)
	if err != nil {
		return Result{}, err
	}
	return Result{Inserted: inserted.Inserted, Skipped: inserted.Skipped}, nil
}
