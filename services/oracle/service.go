// Package oracle answers "what would we get if we scraped this URL" without
// touching the catalog or chart_entries. It picks a platform from the URL,
// runs the same fetch+parse path the ingest service uses and returns a
// preview of the rows.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"leadharvest-backend/lib/platforms/beatport"
	"leadharvest-backend/lib/platforms/toptracker"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("leadharvest.services.oracle")

// artist names shown in a preview, deduped by raw name
const maxArtistPreviews = 100

var ErrNoSession = fmt.Errorf("gated source URL but no session configured")

type Service struct {
	client beatport.Client
	// nil when the gated source is not configured
	session *toptracker.SessionStore
}

func NewService(client beatport.Client, session *toptracker.SessionStore) Service {
	return Service{client: client, session: session}
}

type Result struct {
	Platform    string
	ChartFamily string
	GenreSlug   string
	// extraction strategy that produced the rows
	Strategy string
	RowCount int
	Filtered int
	// deduped artist names in chart order, capped
	Artists []string
}

// Scan fetches and parses a chart URL read-only.
func (s Service) Scan(ctx context.Context, rawURL string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Scan")
	defer span.End()
	span.SetAttributes(attribute.String("url", rawURL))

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return Result{}, fmt.Errorf("not a chart URL: %q", rawURL)
	}

	var result Result
	if isGated(parsed) {
		result, err = s.scanGated(ctx, rawURL, parsed)
	} else {
		result, err = s.scanBeatport(ctx, rawURL)
	}
	if err != nil {
		return Result{}, err
	}

	span.SetAttributes(
		attribute.String("platform", result.Platform),
		attribute.String("strategy", result.Strategy),
		attribute.Int("rows", result.RowCount),
	)
	slog.InfoContext(ctx, "scanned chart url",
		"url", rawURL,
		"platform", result.Platform,
		"strategy", result.Strategy,
		"rows", result.RowCount,
	)
	return result, nil
}

func (s Service) scanBeatport(ctx context.Context, rawURL string) (Result, error) {
	html, err := s.client.FetchPage(ctx, rawURL)
	if err != nil {
		return Result{}, err
	}
	parsed, err := beatport.ParseChart(ctx, html)
	if err != nil {
		return Result{}, err
	}

	artists := make([]string, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		artists = append(artists, row.ArtistName)
	}
	return Result{
		Platform:    beatport.Platform,
		ChartFamily: beatport.ClassifyFamily(rawURL, ""),
		GenreSlug:   beatport.GenreSlugFromURL(rawURL),
		Strategy:    parsed.Strategy,
		RowCount:    len(parsed.Rows),
		Filtered:    parsed.Filtered,
		Artists:     dedupe(artists),
	}, nil
}

func (s Service) scanGated(ctx context.Context, rawURL string, parsed *url.URL) (Result, error) {
	if s.session == nil {
		return Result{}, ErrNoSession
	}
	cookie, err := s.session.Get(ctx)
	if err != nil {
		return Result{}, err
	}

	html, err := s.session.Fetcher().FetchWithCookie(ctx, rawURL, cookie)
	if err != nil {
		return Result{}, err
	}
	chart, err := toptracker.ParseChart(ctx, html)
	if err != nil {
		if errors.Is(err, toptracker.ErrLoginPage) {
			s.session.Invalidate("scan returned a login page")
		}
		return Result{}, err
	}

	artists := make([]string, 0, len(chart.Rows))
	for _, row := range chart.Rows {
		artists = append(artists, row.ArtistName)
	}
	return Result{
		Platform:    toptracker.Platform,
		ChartFamily: beatport.FamilyTopTracks,
		GenreSlug:   gatedGenreSlug(parsed.Path),
		Strategy:    chart.Strategy,
		RowCount:    len(chart.Rows),
		Filtered:    chart.Filtered,
		Artists:     dedupe(artists),
	}, nil
}

func isGated(u *url.URL) bool {
	return strings.Contains(u.Host, "bptoptracker") ||
		strings.HasPrefix(u.Path, "/top/track/")
}

// gatedGenreSlug pulls the genre out of /top/track/{genre}[/{date}] paths.
func gatedGenreSlug(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 3 && parts[0] == "top" && parts[1] == "track" {
		return parts[2]
	}
	return ""
}

func dedupe(names []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == maxArtistPreviews {
			break
		}
	}
	return out
}
