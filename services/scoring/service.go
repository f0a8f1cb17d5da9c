// Package scoring derives artist_metrics from chart_entries (Normalize) and
// lead_scores from artist_metrics (Score). Both phases fully replace their
// output table and are byte-stable on unchanged input: the reference date
// comes from the data, never the wall clock.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("leadharvest.services.scoring")

const (
	recentWindowDays = 7
	priorWindowDays  = 14
)

type Service struct {
	store leadstore.Store
	qry   *db.Queries
}

func NewService(store leadstore.Store) Service {
	return Service{
		store: store,
		qry:   store.Queries(),
	}
}

type NormalizeResult struct {
	AsOf    string
	Artists int
}

// Normalize recomputes artist_metrics wholesale from chart_entries. The
// recent (7d) and prior (7-14d) position windows hang off the max snapshot
// date in store.
func (s Service) Normalize(ctx context.Context) (NormalizeResult, error) {
	ctx, span := tracer.Start(ctx, "Normalize")
	defer span.End()

	asOf, err := s.qry.MaxSnapshotDate(ctx)
	if err != nil {
		return NormalizeResult{}, err
	}
	if asOf == "" {
		return NormalizeResult{}, fmt.Errorf("no chart entries to normalize")
	}

	ref, err := time.Parse("2006-01-02", asOf)
	if err != nil {
		return NormalizeResult{}, fmt.Errorf("bad max snapshot date %q: %w", asOf, err)
	}
	recentAfter := ref.AddDate(0, 0, -recentWindowDays).Format("2006-01-02")
	priorAfter := ref.AddDate(0, 0, -priorWindowDays).Format("2006-01-02")

	aggregates, err := s.qry.ListMetricAggregates(ctx, db.ListMetricAggregatesParams{
		RecentAfter: recentAfter,
		PriorAfter:  priorAfter,
	})
	if err != nil {
		return NormalizeResult{}, err
	}

	genreRows, err := s.qry.ListArtistGenres(ctx)
	if err != nil {
		return NormalizeResult{}, err
	}
	genres := map[string][]string{}
	for _, g := range genreRows {
		genres[g.ArtistID] = append(genres[g.ArtistID], g.GenreSlug)
	}

	metrics := make([]db.UpsertArtistMetricsParams, len(aggregates))
	for i, a := range aggregates {
		metrics[i] = db.UpsertArtistMetricsParams{
			ArtistID:          a.ArtistID,
			ArtistName:        a.ArtistName,
			FirstSeen:         a.FirstSeen,
			LastSeen:          a.LastSeen,
			TotalEntries:      a.TotalEntries,
			DaysInCharts:      a.DaysInCharts,
			BestPosition:      a.BestPosition,
			AvgPosition:       a.AvgPosition,
			RecentAvgPosition: a.RecentAvgPosition.Float64,
			PriorAvgPosition:  a.PriorAvgPosition.Float64,
			Genres:            strings.Join(genres[a.ArtistID], ","),
		}
	}

	if err := s.store.ReplaceMetrics(ctx, metrics); err != nil {
		return NormalizeResult{}, err
	}

	span.SetAttributes(
		attribute.String("as_of", asOf),
		attribute.Int("artists", len(metrics)),
	)
	slog.InfoContext(ctx, "metrics normalized", "as_of", asOf, "artists", len(metrics))
	return NormalizeResult{AsOf: asOf, Artists: len(metrics)}, nil
}

type ScoreResult struct {
	AsOf     string
	Scored   int
	Segments map[string]int
}

// Score maps every artist_metrics row through the versioned formula and
// fully replaces lead_scores.
func (s Service) Score(ctx context.Context) (ScoreResult, error) {
	ctx, span := tracer.Start(ctx, "Score")
	defer span.End()

	asOf, err := s.qry.MaxSnapshotDate(ctx)
	if err != nil {
		return ScoreResult{}, err
	}
	if asOf == "" {
		return ScoreResult{}, fmt.Errorf("no chart entries to score")
	}

	metrics, err := s.qry.ListArtistMetrics(ctx)
	if err != nil {
		return ScoreResult{}, err
	}

	result := ScoreResult{AsOf: asOf, Segments: map[string]int{}}
	scores := make([]db.UpsertLeadScoreParams, len(metrics))
	for i, m := range metrics {
		segment, score, signals := Compute(Metrics{
			FirstSeen:         m.FirstSeen,
			LastSeen:          m.LastSeen,
			TotalEntries:      m.TotalEntries,
			DaysInCharts:      m.DaysInCharts,
			BestPosition:      m.BestPosition,
			AvgPosition:       m.AvgPosition,
			RecentAvgPosition: m.RecentAvgPosition,
			PriorAvgPosition:  m.PriorAvgPosition,
		}, asOf)

		payload, err := json.Marshal(signals)
		if err != nil {
			return ScoreResult{}, err
		}
		scores[i] = db.UpsertLeadScoreParams{
			ArtistID:       m.ArtistID,
			ArtistName:     m.ArtistName,
			Segment:        segment,
			Score:          score,
			Signals:        string(payload),
			FormulaVersion: FormulaVersion,
			AsOf:           asOf,
		}
		result.Segments[segment]++
	}

	if err := s.store.ReplaceScores(ctx, scores); err != nil {
		return ScoreResult{}, err
	}
	result.Scored = len(scores)

	span.SetAttributes(
		attribute.String("as_of", asOf),
		attribute.Int("scored", result.Scored),
	)
	slog.InfoContext(ctx, "lead scores computed", "as_of", asOf, "scored", result.Scored)
	return result, nil
}
