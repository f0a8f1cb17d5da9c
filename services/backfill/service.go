// Package backfill pulls historical gated charts over a (genre x date) grid
// with bounded concurrency, then bulk-resolves artists and inserts all rows
// at the end. Days already in store fall out as skips via the natural key.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"leadharvest-backend/lib/fetcher"
	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/platforms/toptracker"
	"leadharvest-backend/services/resolver"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("leadharvest.services.backfill")

// AllGenres backfills every configured genre at once. The day cap is
// tighter because the request volume multiplies by the genre count.
const AllGenres = "__all__"

const (
	defaultConcurrency = 5
	defaultBatchDelay  = 500 * time.Millisecond
	maxJitterMs        = 250
	maxDays            = 120
	maxDaysAllGenres   = 60
)

var ErrNoSession = fmt.Errorf("gated source not configured")

type Options struct {
	// the full genre list AllGenres expands to
	Genres      []string
	Concurrency int
	BatchDelay  time.Duration
}

type Service struct {
	store    leadstore.Store
	resolver resolver.Service
	session  *toptracker.SessionStore
	opts     Options
}

func NewService(store leadstore.Store, session *toptracker.SessionStore, opts Options) Service {
	if opts.Concurrency == 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.BatchDelay == 0 {
		opts.BatchDelay = defaultBatchDelay
	}
	return Service{
		store:    store,
		resolver: resolver.NewService(store),
		session:  session,
		opts:     opts,
	}
}

type Result struct {
	DatesRequested int
	ChartsFetched  int
	TotalInserted  int64
	TotalSkipped   int64
	Filtered       int
	Errors         []error
	// human-readable reading of the 404 pattern, empty when none occurred
	Hint string
}

func dateRange(from, to string) ([]string, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", to, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("from %s is after to %s", from, to)
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}

type task struct {
	chart db.ChartsCatalog
	genre string
	date  string
}

type fetchedPage struct {
	task task
	rows []toptracker.Row
}

// Run backfills one genre (or AllGenres) over an inclusive date range.
func (s Service) Run(ctx context.Context, genre, from, to string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("genre", genre),
		attribute.String("from", from),
		attribute.String("to", to),
	)

	if s.session == nil {
		return Result{}, ErrNoSession
	}

	dates, err := dateRange(from, to)
	if err != nil {
		return Result{}, err
	}

	genres := []string{genre}
	dayCap := maxDays
	if genre == AllGenres {
		if len(s.opts.Genres) == 0 {
			return Result{}, fmt.Errorf("no genres configured for %s", AllGenres)
		}
		genres = s.opts.Genres
		dayCap = maxDaysAllGenres
	}
	if len(dates) > dayCap {
		return Result{}, fmt.Errorf("range spans %d days, cap is %d", len(dates), dayCap)
	}

	cookie, err := s.session.Get(ctx)
	if err != nil {
		return Result{}, err
	}

	var tasks []task
	for _, g := range genres {
		chart, err := s.store.GetOrCreateChart(ctx, leadstore.CatalogEntry{
			Platform:    toptracker.Platform,
			ChartFamily: "top_tracks",
			GenreSlug:   g,
			Url:         toptracker.BaseUrl + "/top/track/" + g,
		})
		if err != nil {
			return Result{}, err
		}
		for _, date := range dates {
			tasks = append(tasks, task{chart: chart, genre: g, date: date})
		}
	}

	result := Result{DatesRequested: len(dates)}
	pages, notFound, filtered, errs := s.fetchGrid(ctx, cookie, tasks)
	result.Errors = errs
	result.Filtered = filtered
	result.ChartsFetched = len(pages)

	for _, err := range errs {
		if errors.Is(err, toptracker.ErrLoginPage) {
			s.session.Invalidate("chart fetch returned the login page")
			return result, err
		}
	}

	if notFound > 0 {
		if len(pages) == 0 && notFound == len(tasks) {
			result.Hint = "every date returned 404; the genre slug is probably wrong"
		} else {
			result.Hint = "some dates returned 404; the source has no data for those days"
		}
	}

	if len(pages) == 0 {
		return result, nil
	}

	// insertion order independent of fetch completion order
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].task.genre != pages[j].task.genre {
			return pages[i].task.genre < pages[j].task.genre
		}
		return pages[i].task.date < pages[j].task.date
	})

	var raws []resolver.RawArtist
	for _, page := range pages {
		for _, row := range page.rows {
			if row.ArtistName != "" {
				raws = append(raws, resolver.RawArtist{Name: row.ArtistName})
			}
		}
	}
	artists, err := s.resolver.ResolveBulk(ctx, toptracker.Platform, raws)
	if err != nil {
		return result, err
	}

	var entries []db.InsertChartEntryParams
	for _, page := range pages {
		for _, row := range page.rows {
			var artistID string
			if artist, ok := artists[row.ArtistName]; ok {
				artistID = artist.ArtistID
			}
			entries = append(entries, db.InsertChartEntryParams{
				ChartID:       page.task.chart.ID,
				ChartFamily:   page.task.chart.ChartFamily,
				SnapshotDate:  page.task.date,
				Position:      int64(row.Position),
				TrackTitle:    row.TrackTitle,
				ArtistNameRaw: row.ArtistName,
				ArtistID:      artistID,
				ArtistsFull:   row.ArtistsFull,
				LabelName:     row.LabelName,
				Released:      row.Released,
				Movement:      row.Movement,
				GenreSlug:     page.task.genre,
			})
		}
	}

	inserted, err := s.store.InsertEntries(ctx, entries)
	if err != nil {
		return result, err
	}
	result.TotalInserted = inserted.Inserted
	result.TotalSkipped = inserted.Skipped

	slog.InfoContext(ctx, "backfill complete",
		"genre", genre,
		"dates", len(dates),
		"inserted", result.TotalInserted,
		"skipped", result.TotalSkipped,
		"errors", len(result.Errors),
		"hint", result.Hint,
	)
	return result, nil
}

// fetchGrid works through tasks in fixed-size concurrent batches with a
// jittered pause between batches.
func (s Service) fetchGrid(ctx context.Context, cookie string, tasks []task) ([]fetchedPage, int, int, []error) {
	ctx, span := tracer.Start(ctx, "fetchGrid")
	defer span.End()
	span.SetAttributes(attribute.Int("tasks", len(tasks)))

	var pages []fetchedPage
	var errs []error
	notFound := 0
	filtered := 0
	var mu sync.Mutex

	for start := 0; start < len(tasks); start += s.opts.Concurrency {
		if start > 0 {
			jitter, err := random.IntRange(0, maxJitterMs)
			if err != nil {
				jitter = 0
			}
			select {
			case <-time.After(s.opts.BatchDelay + time.Duration(jitter)*time.Millisecond):
			case <-ctx.Done():
				mu.Lock()
				errs = append(errs, ctx.Err())
				mu.Unlock()
				return pages, notFound, filtered, errs
			}
		}

		end := start + s.opts.Concurrency
		if end > len(tasks) {
			end = len(tasks)
		}

		wg := sync.WaitGroup{}
		for _, t := range tasks[start:end] {
			wg.Add(1)
			go func(t task) {
				defer wg.Done()

				link := s.session.ChartURL(t.genre, t.date)
				html, err := s.session.Fetcher().FetchWithCookie(ctx, link, cookie)
				if err != nil {
					mu.Lock()
					if fetcher.IsNotFound(err) {
						notFound++
					}
					errs = append(errs, fmt.Errorf("%s %s: %w", t.genre, t.date, err))
					mu.Unlock()
					return
				}

				parsed, err := toptracker.ParseChart(ctx, html)
				if err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s %s: %w", t.genre, t.date, err))
					mu.Unlock()
					return
				}

				mu.Lock()
				pages = append(pages, fetchedPage{task: t, rows: parsed.Rows})
				filtered += parsed.Filtered
				mu.Unlock()
			}(t)
		}
		wg.Wait()

		// stop early when the session died; remaining fetches would all
		// come back as login pages
		mu.Lock()
		dead := false
		for _, err := range errs {
			if errors.Is(err, toptracker.ErrLoginPage) {
				dead = true
				break
			}
		}
		mu.Unlock()
		if dead {
			break
		}
	}

	return pages, notFound, filtered, errs
}
