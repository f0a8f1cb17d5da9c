package scoring

import (
	"context"
	"testing"
	"time"

	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/testutil"
	"leadharvest-backend/lib/textutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (Service, leadstore.Store, context.Context) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "scoring",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	store := leadstore.NewStore(res.DB)
	return NewService(store), store, ctx
}

func dateRange(t *testing.T, from string, days int) []string {
	start, err := time.Parse("2006-01-02", from)
	require.NoError(t, err)
	dates := make([]string, days)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i).Format("2006-01-02")
	}
	return dates
}

// seedArtist inserts one chart entry per date at a fixed position.
func seedArtist(t *testing.T, store leadstore.Store, ctx context.Context, chart db.ChartsCatalog, name string, position int64, dates []string) string {
	artistID := "bptoptracker:" + textutil.Slugify(name)
	err := store.Queries().CreateArtist(ctx, db.CreateArtistParams{
		ArtistID:       artistID,
		Name:           name,
		NormalizedName: textutil.NormalizeName(name),
		Slug:           textutil.Slugify(name),
	})
	require.NoError(t, err)

	entries := make([]db.InsertChartEntryParams, len(dates))
	for i, date := range dates {
		entries[i] = db.InsertChartEntryParams{
			ChartID:       chart.ID,
			ChartFamily:   chart.ChartFamily,
			SnapshotDate:  date,
			Position:      position,
			TrackTitle:    "Track by " + name,
			ArtistNameRaw: name,
			ArtistID:      artistID,
			ArtistsFull:   name,
			GenreSlug:     chart.GenreSlug,
		}
	}
	_, err = store.InsertEntries(ctx, entries)
	require.NoError(t, err)
	return artistID
}

// seed builds one artist per segment around an as-of date of 2026-08-01.
func seedSegments(t *testing.T, store leadstore.Store, ctx context.Context) (chart db.ChartsCatalog, ids map[string]string) {
	chart, err := store.GetOrCreateChart(ctx, leadstore.CatalogEntry{
		Platform:    "bptoptracker",
		ChartFamily: "top_tracks",
		GenreSlug:   "afro-house",
		Url:         "https://www.bptoptracker.com/top/track/afro-house",
	})
	require.NoError(t, err)

	ids = map[string]string{}
	// 60 distinct days at position 3
	ids["core"] = seedArtist(t, store, ctx, chart, "Core Act", 3, dateRange(t, "2026-06-03", 60))
	// 21 days ending 8 days before as-of
	ids["regular"] = seedArtist(t, store, ctx, chart, "Regular Act", 50, dateRange(t, "2026-07-04", 21))
	// prior-window day at 40, recent-window day at 20
	ids["momentum"] = seedArtist(t, store, ctx, chart, "Momentum Act", 40, []string{"2026-07-22"})
	_, err = store.InsertEntries(ctx, []db.InsertChartEntryParams{{
		ChartID:       chart.ID,
		ChartFamily:   chart.ChartFamily,
		SnapshotDate:  "2026-07-30",
		Position:      20,
		TrackTitle:    "Track by Momentum Act",
		ArtistNameRaw: "Momentum Act",
		ArtistID:      ids["momentum"],
		ArtistsFull:   "Momentum Act",
		GenreSlug:     chart.GenreSlug,
	}})
	require.NoError(t, err)
	// first seen 3 days before as-of
	ids["fresh"] = seedArtist(t, store, ctx, chart, "Fresh Act", 80, []string{"2026-07-29"})
	// last seen 60 days before as-of
	ids["flyers"] = seedArtist(t, store, ctx, chart, "Flyer Act", 90, dateRange(t, "2026-06-01", 2))
	return chart, ids
}

func TestNormalize(t *testing.T) {
	svc, store, ctx := setup(t)
	_, ids := seedSegments(t, store, ctx)

	result, err := svc.Normalize(ctx)
	require.NoError(t, err)
	require.Equal(t, "2026-08-01", result.AsOf)
	require.Equal(t, 5, result.Artists)

	core, err := store.Queries().GetArtistMetrics(ctx, ids["core"])
	require.NoError(t, err)
	require.Equal(t, "2026-06-03", core.FirstSeen)
	require.Equal(t, "2026-08-01", core.LastSeen)
	require.Equal(t, int64(60), core.TotalEntries)
	require.Equal(t, int64(60), core.DaysInCharts)
	require.Equal(t, int64(3), core.BestPosition)
	require.Equal(t, float64(3), core.AvgPosition)
	require.Equal(t, "afro-house", core.Genres)

	momentum, err := store.Queries().GetArtistMetrics(ctx, ids["momentum"])
	require.NoError(t, err)
	require.Equal(t, float64(20), momentum.RecentAvgPosition)
	require.Equal(t, float64(40), momentum.PriorAvgPosition)

	// no entries in either window
	flyers, err := store.Queries().GetArtistMetrics(ctx, ids["flyers"])
	require.NoError(t, err)
	require.Zero(t, flyers.RecentAvgPosition)
	require.Zero(t, flyers.PriorAvgPosition)
}

func TestScoreSegments(t *testing.T) {
	svc, store, ctx := setup(t)
	_, ids := seedSegments(t, store, ctx)

	_, err := svc.Normalize(ctx)
	require.NoError(t, err)
	result, err := svc.Score(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, result.Scored)
	require.Equal(t, map[string]int{
		SegmentCore:     1,
		SegmentRegular:  1,
		SegmentMomentum: 1,
		SegmentFresh:    1,
		SegmentFlyers:   1,
	}, result.Segments)

	for segment, artistID := range ids {
		score, err := store.Queries().GetLeadScore(ctx, artistID)
		require.NoError(t, err)
		require.Equal(t, segment, score.Segment, "artist %s", artistID)
		require.Equal(t, int64(FormulaVersion), score.FormulaVersion)
		require.Equal(t, "2026-08-01", score.AsOf)
		require.GreaterOrEqual(t, score.Score, float64(0))
		require.LessOrEqual(t, score.Score, float64(100))
	}

	// the core artist outranks the dormant one
	core, err := store.Queries().GetLeadScore(ctx, ids["core"])
	require.NoError(t, err)
	flyers, err := store.Queries().GetLeadScore(ctx, ids["flyers"])
	require.NoError(t, err)
	require.Greater(t, core.Score, flyers.Score)
}

func TestScoringDeterministic(t *testing.T) {
	svc, store, ctx := setup(t)
	seedSegments(t, store, ctx)

	_, err := svc.Normalize(ctx)
	require.NoError(t, err)
	_, err = svc.Score(ctx)
	require.NoError(t, err)

	metrics1, err := store.Queries().ListArtistMetrics(ctx)
	require.NoError(t, err)
	scores1, err := store.Queries().ListLeadScores(ctx)
	require.NoError(t, err)

	// rerun on unchanged entries must reproduce both tables exactly
	_, err = svc.Normalize(ctx)
	require.NoError(t, err)
	_, err = svc.Score(ctx)
	require.NoError(t, err)

	metrics2, err := store.Queries().ListArtistMetrics(ctx)
	require.NoError(t, err)
	scores2, err := store.Queries().ListLeadScores(ctx)
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(metrics1, metrics2))
	require.Empty(t, cmp.Diff(scores1, scores2))
}

func TestComputeFormula(t *testing.T) {
	// charting today at the top with long history
	segment, score, signals := Compute(Metrics{
		FirstSeen:         "2026-05-01",
		LastSeen:          "2026-08-01",
		DaysInCharts:      90,
		BestPosition:      1,
		AvgPosition:       5,
		RecentAvgPosition: 4,
		PriorAvgPosition:  6,
	}, "2026-08-01")
	require.Equal(t, SegmentCore, segment)
	require.Equal(t, float64(100), signals.Recency)
	require.Equal(t, float64(100), signals.Longevity)
	require.Equal(t, float64(100), signals.Peak)
	require.Equal(t, float64(60), signals.Trend)
	require.InDelta(t, 90, score, 0.1)

	// dormant artist decays to zero recency
	segment, score, signals = Compute(Metrics{
		FirstSeen:    "2026-01-01",
		LastSeen:     "2026-05-01",
		DaysInCharts: 5,
		BestPosition: 100,
		AvgPosition:  120,
	}, "2026-08-01")
	require.Equal(t, SegmentFlyers, segment)
	require.Equal(t, float64(0), signals.Recency)
	require.Equal(t, float64(30), signals.Trend)
	require.Less(t, score, float64(20))
}

func TestNormalizeEmptyStore(t *testing.T) {
	svc, _, ctx := setup(t)
	_, err := svc.Normalize(ctx)
	require.ErrorContains(t, err, "no chart entries")
	_, err = svc.Score(ctx)
	require.ErrorContains(t, err, "no chart entries")
}
