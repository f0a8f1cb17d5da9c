package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"leadharvest-backend/lib/fetcher"
	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/platforms/beatport"
	"leadharvest-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

const chartFixture = `
<html><body>
<div data-position="1"><span class="track-title">Deep Signal</span><a href="/artist/kora/1022334">Kora</a><a href="/label/drumcode/831">Drumcode</a></div>
<div data-position="2"><span class="track-title">Midnight Run</span><a href="/artist/velt/445566">Velt</a></div>
<div data-position="3"><span class="track-title">Sign in</span><a href="/artist/x/1">Log in</a></div>
</body></html>`

type fakeCharts struct {
	brokenPath atomic.Value // string; "" = nothing broken
}

func (f *fakeCharts) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if broken, _ := f.brokenPath.Load().(string); broken != "" && r.URL.Path == broken {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, chartFixture)
	})
}

func setup(t *testing.T) (Service, leadstore.Store, *fakeCharts, string, context.Context) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "ingest",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	site := &fakeCharts{}
	site.brokenPath.Store("")
	server := httptest.NewServer(site.handler())
	t.Cleanup(server.Close)

	store := leadstore.NewStore(res.DB)
	client := beatport.NewClient(fetcher.Options{
		Timeout:    time.Second * 5,
		MaxRetries: 1,
		Backoff:    time.Millisecond,
	})
	svc := NewService(store, client, nil, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)
	return svc, store, site, server.URL, ctx
}

func seedCatalog(t *testing.T, store leadstore.Store, ctx context.Context, serverUrl string) {
	err := store.UpsertCatalog(ctx, []leadstore.CatalogEntry{
		{
			Platform:    beatport.Platform,
			ChartFamily: beatport.FamilyTopTracks,
			GenreSlug:   "afro-house",
			GenreName:   "Afro House",
			Url:         serverUrl + "/genre/afro-house/89/top-100",
		},
		{
			Platform:    beatport.Platform,
			ChartFamily: beatport.FamilyHypeTracks,
			GenreSlug:   "afro-house",
			GenreName:   "Afro House",
			Url:         serverUrl + "/genre/afro-house/89/hype-100",
		},
	}, "2026-08-01")
	require.NoError(t, err)
}

func TestRunIngestsCatalog(t *testing.T) {
	svc, store, _, serverUrl, ctx := setup(t)
	seedCatalog(t, store, ctx, serverUrl)

	result, err := svc.Run(ctx, "2026-08-01")
	require.NoError(t, err)
	require.Equal(t, 2, result.ChartsFetched)
	require.Equal(t, int64(4), result.Inserted)
	require.Equal(t, int64(0), result.Skipped)
	require.Equal(t, 2, result.Filtered)
	require.Empty(t, result.Errors)

	// rerun is a pure no-op
	again, err := svc.Run(ctx, "2026-08-01")
	require.NoError(t, err)
	require.Equal(t, int64(0), again.Inserted)
	require.Equal(t, int64(4), again.Skipped)

	count, err := store.Queries().CountChartEntries(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	// artists resolved with platform-native ids
	artist, err := store.Queries().GetArtist(ctx, "1022334")
	require.NoError(t, err)
	require.Equal(t, "Kora", artist.Name)
}

func TestRunContinuesPastFailingChart(t *testing.T) {
	svc, store, site, serverUrl, ctx := setup(t)
	seedCatalog(t, store, ctx, serverUrl)
	site.brokenPath.Store("/genre/afro-house/89/top-100")

	result, err := svc.Run(ctx, "2026-08-01")
	require.NoError(t, err)
	require.Equal(t, 1, result.ChartsFetched)
	require.Len(t, result.Errors, 1)
	require.Equal(t, int64(2), result.Inserted)
}

func TestIngestURLCreatesCatalogRow(t *testing.T) {
	svc, store, _, serverUrl, ctx := setup(t)

	chartUrl := serverUrl + "/genre/techno/6/hype-100"
	result, err := svc.IngestURL(ctx, chartUrl, "", "2026-08-01")
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Inserted)

	chart, err := store.Queries().GetCatalogEntryByURL(ctx, chartUrl)
	require.NoError(t, err)
	require.Equal(t, beatport.FamilyHypeTracks, chart.ChartFamily)
	require.Equal(t, "techno", chart.GenreSlug)

	entries, err := store.Queries().ListEntriesForArtist(ctx, "1022334")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "techno", entries[0].GenreSlug)
}

func TestPaste(t *testing.T) {
	svc, store, _, _, ctx := setup(t)

	text := "1 ↑2\tDeep Signal\tKora\tDrumcode\n" +
		"2\tMidnight Run\tVelt\n"
	result, err := svc.Paste(ctx, "afro-house", "2026-08-01", text)
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Inserted)

	// gated artists get synthetic ids
	artist, err := store.Queries().GetArtist(ctx, "bptoptracker:kora")
	require.NoError(t, err)
	require.Equal(t, "Kora", artist.Name)

	entries, err := store.Queries().ListEntriesForArtist(ctx, "bptoptracker:kora")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "↑2", entries[0].Movement)

	_, err = svc.Paste(ctx, "afro-house", "2026-08-01", "no rows here\n")
	require.Error(t, err)
}
