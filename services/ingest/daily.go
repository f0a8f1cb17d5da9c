package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/platforms/toptracker"
	"leadharvest-backend/lib/timezone"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrNoSession = fmt.Errorf("gated source not configured")

// gatedChart finds or lazily creates the per-genre catalog row for the
// gated source. Its url key is the dateless chart path.
func (s Service) gatedChart(ctx context.Context, genre string) (db.ChartsCatalog, error) {
	return s.store.GetOrCreateChart(ctx, leadstore.CatalogEntry{
		Platform:    toptracker.Platform,
		ChartFamily: "top_tracks",
		GenreSlug:   genre,
		Url:         toptracker.BaseUrl + "/top/track/" + genre,
	})
}

// DailyUpdate pulls the configured gated genres for yesterday and today.
// Yesterday's chart is final by now; today's is a provisional early read
// that the natural key lets us re-ingest later without duplicates.
func (s Service) DailyUpdate(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "DailyUpdate")
	defer span.End()

	if s.session == nil {
		return Result{}, ErrNoSession
	}
	if len(s.opts.Genres) == 0 {
		return Result{}, fmt.Errorf("no gated genres configured")
	}

	dates := []string{timezone.Yesterday(), timezone.Today()}
	span.SetAttributes(attribute.Int("genres", len(s.opts.Genres)))

	var result Result
	first := true
	for _, genre := range s.opts.Genres {
		for _, date := range dates {
			if !first {
				select {
				case <-time.After(s.opts.GatedDelay):
				case <-ctx.Done():
					return result, ctx.Err()
				}
			}
			first = false

			dayResult, err := s.IngestGated(ctx, genre, date)
			if err != nil {
				if errors.Is(err, toptracker.ErrLoginPage) {
					// session died mid-run: stop hammering the site
					span.SetStatus(codes.Error, "session invalidated mid-run")
					result.Errors = append(result.Errors, err)
					return result, err
				}
				slog.WarnContext(ctx, "gated ingest failed", "genre", genre, "date", date, "err", err)
				result.Errors = append(result.Errors, fmt.Errorf("%s %s: %w", genre, date, err))
				continue
			}
			result.merge(dayResult)
		}
	}

	slog.InfoContext(ctx, "daily update complete",
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}

// IngestGated fetches and ingests one gated genre chart for one date.
func (s Service) IngestGated(ctx context.Context, genre, date string) (Result, error) {
	ctx, span := tracer.Start(ctx, "IngestGated")
	defer span.End()
	span.SetAttributes(
		attribute.String("genre", genre),
		attribute.String("date", date),
	)

	if s.session == nil {
		return Result{}, ErrNoSession
	}

	cookie, err := s.session.Get(ctx)
	if err != nil {
		return Result{}, err
	}

	chart, err := s.gatedChart(ctx, genre)
	if err != nil {
		return Result{}, err
	}

	html, err := s.session.Fetcher().FetchWithCookie(ctx, s.session.ChartURL(genre, date), cookie)
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		return Result{}, err
	}

	parsed, err := toptracker.ParseChart(ctx, html)
	if err != nil {
		if errors.Is(err, toptracker.ErrLoginPage) {
			s.session.Invalidate("chart fetch returned the login page")
		}
		span.SetStatus(codes.Error, "parse failed")
		return Result{}, err
	}

	result, err := s.insertGatedRows(ctx, chart, date, parsed)
	if err != nil {
		return Result{}, err
	}
	result.ChartsFetched = 1
	return result, nil
}

// Paste ingests rows pasted as TSV for a gated genre and date, for days the
// site only renders client-side.
func (s Service) Paste(ctx context.Context, genre, date, text string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Paste")
	defer span.End()

	if date == "" {
		date = timezone.Today()
	}

	chart, err := s.gatedChart(ctx, genre)
	if err != nil {
		return Result{}, err
	}

	parsed := toptracker.ParseTSV(text)
	if len(parsed.Rows) == 0 {
		return Result{}, fmt.Errorf("no valid rows in pasted text")
	}
	return s.insertGatedRows(ctx, chart, date, parsed)
}

func (s Service) insertGatedRows(ctx context.Context, chart db.ChartsCatalog, date string, parsed toptracker.ParseResult) (Result, error) {
	rows := make([]entryRow, len(parsed.Rows))
	for i, r := range parsed.Rows {
		rows[i] = entryRow{
			Position:    r.Position,
			Movement:    r.Movement,
			TrackTitle:  r.TrackTitle,
			ArtistName:  r.ArtistName,
			ArtistsFull: r.ArtistsFull,
			LabelName:   r.LabelName,
			Released:    r.Released,
		}
	}
	result, err := s.insertRows(ctx, toptracker.Platform, chart, date, rows)
	if err != nil {
		return Result{}, err
	}
	result.Filtered = parsed.Filtered
	return result, nil
}
