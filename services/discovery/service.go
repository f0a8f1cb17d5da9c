// Package discovery refreshes the chart catalog from the public platform:
// genre index -> per-genre chart links -> charts_catalog upserts. Charts
// that disappear from the site are deactivated, never deleted.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/platforms/beatport"
	"leadharvest-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("leadharvest.services.discovery")

type Options struct {
	// defaults to the public index; tests point it at a local server
	IndexUrl string
}

type Service struct {
	store  leadstore.Store
	client beatport.Client
	opts   Options
}

func NewService(store leadstore.Store, client beatport.Client, opts Options) Service {
	if opts.IndexUrl == "" {
		opts.IndexUrl = beatport.BaseUrl
	}
	return Service{
		store:  store,
		client: client,
		opts:   opts,
	}
}

type Result struct {
	GenresFetched  int
	ChartURLsSeen  int
	Upserted       int
	MarkedInactive int64
	// per-genre failures; the pass still completes
	Errors []error
}

// Run performs one full discovery pass. Only an unusable genre index fails
// the run; individual genre pages that cannot be fetched or parsed are
// recorded in Result.Errors and skipped.
func (s Service) Run(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	indexUrl, err := url.Parse(s.opts.IndexUrl)
	if err != nil {
		return Result{}, err
	}

	indexHtml, err := s.client.FetchPage(ctx, s.opts.IndexUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch genre index")
		return Result{}, fmt.Errorf("fetch genre index: %w", err)
	}
	genres, err := beatport.ParseGenres(indexHtml, indexUrl)
	if err != nil {
		return Result{}, err
	}
	if len(genres) == 0 {
		span.SetStatus(codes.Error, "no genres found")
		return Result{}, fmt.Errorf("genre index yielded no genres")
	}

	var result Result
	result.GenresFetched = len(genres)
	now := timezone.Date(timezone.Now())

	var catalog []leadstore.CatalogEntry
	var seenUrls []string
	seen := map[string]struct{}{}

	for _, genre := range genres {
		genreHtml, err := s.client.FetchPage(ctx, genre.Url)
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch genre page", "genre", genre.Slug, "err", err)
			result.Errors = append(result.Errors, fmt.Errorf("genre %s: %w", genre.Slug, err))
			continue
		}

		base, err := url.Parse(genre.Url)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("genre %s: %w", genre.Slug, err))
			continue
		}
		links, err := beatport.ParseChartLinks(genreHtml, base)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("genre %s: %w", genre.Slug, err))
			continue
		}

		for _, link := range links {
			if _, ok := seen[link.Url]; ok {
				continue
			}
			seen[link.Url] = struct{}{}
			seenUrls = append(seenUrls, link.Url)
			catalog = append(catalog, leadstore.CatalogEntry{
				Platform:    beatport.Platform,
				ChartFamily: link.Family,
				GenreSlug:   genre.Slug,
				GenreName:   genre.Name,
				Url:         link.Url,
				Title:       link.Title,
			})
		}
	}

	result.ChartURLsSeen = len(seenUrls)
	span.SetAttributes(
		attribute.Int("genres", result.GenresFetched),
		attribute.Int("chart_urls", result.ChartURLsSeen),
	)

	if err := s.store.UpsertCatalog(ctx, catalog, now); err != nil {
		span.SetStatus(codes.Error, "failed to upsert catalog")
		return result, err
	}
	result.Upserted = len(catalog)

	// deactivate only when the pass saw something, so a bad day does not
	// wipe the whole catalog
	if len(seenUrls) > 0 {
		deactivated, err := s.store.DeactivateMissing(ctx, beatport.Platform, seenUrls)
		if err != nil {
			return result, err
		}
		result.MarkedInactive = deactivated
	}

	slog.InfoContext(ctx, "discovery pass complete",
		"genres", result.GenresFetched,
		"charts", result.ChartURLsSeen,
		"deactivated", result.MarkedInactive,
		"errors", len(result.Errors),
	)
	return result, nil
}
