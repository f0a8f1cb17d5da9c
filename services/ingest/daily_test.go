package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"leadharvest-backend/lib/fetcher"
	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/platforms/beatport"
	"leadharvest-backend/lib/platforms/toptracker"
	"leadharvest-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

const gatedLoginPage = `
<html><body>
<form action="/login" method="post">
  <input type="hidden" name="_token" value="tok-1">
  <input type="email" name="email">
  <input type="password" name="password">
</form>
</body></html>`

const gatedChartPage = `
<html><body>
<h1>Top 100 chart</h1>
<table><tbody>
<tr><td>1 ↑1</td><td><span class="title">Deep Signal</span><span class="artist">Kora, Velt</span></td><td><span class="label">Drumcode</span></td></tr>
<tr><td>2</td><td><span class="title">Midnight Run</span><span class="artist">Velt</span></td><td></td></tr>
</tbody></table>
</body></html>`

type fakeGated struct {
	chartGets atomic.Int64
	// when set, chart pages revert to the login page after this many fetches
	expireAfter atomic.Int64
}

func (f *fakeGated) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gatedLoginPage)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "xsrf", Value: "x", Path: "/"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("GET /home", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>welcome</body></html>")
	})
	mux.HandleFunc("GET /top/track/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Cookie"), "session=") {
			n := f.chartGets.Add(1)
			if limit := f.expireAfter.Load(); limit > 0 && n > limit {
				fmt.Fprint(w, gatedLoginPage)
				return
			}
			fmt.Fprint(w, gatedChartPage)
			return
		}
		fmt.Fprint(w, gatedLoginPage)
	})
	return mux
}

func setupGated(t *testing.T) (Service, leadstore.Store, *fakeGated, context.Context) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "ingest-gated",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	site := &fakeGated{}
	server := httptest.NewServer(site.handler())
	t.Cleanup(server.Close)

	session, err := toptracker.NewSessionStore(toptracker.SessionOptions{
		BaseUrl:     server.URL,
		Credentials: toptracker.Credentials{Email: "a@b.c", Password: "pw"},
		Fetcher: fetcher.Options{
			Timeout:    time.Second * 5,
			MaxRetries: 1,
			Backoff:    time.Millisecond,
		},
	})
	require.NoError(t, err)

	store := leadstore.NewStore(res.DB)
	client := beatport.NewClient(fetcher.Options{Timeout: time.Second * 5, MaxRetries: 1, Backoff: time.Millisecond})
	svc := NewService(store, client, session, Options{
		Genres:     []string{"afro-house", "techno"},
		GatedDelay: time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)
	return svc, store, site, ctx
}

func TestDailyUpdate(t *testing.T) {
	svc, store, _, ctx := setupGated(t)

	result, err := svc.DailyUpdate(ctx)
	require.NoError(t, err)
	// 2 genres x 2 dates x 2 rows
	require.Equal(t, 4, result.ChartsFetched)
	require.Equal(t, int64(8), result.Inserted)
	require.Empty(t, result.Errors)

	// per-genre catalog rows auto-created
	catalog, err := store.Queries().ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	require.Equal(t, toptracker.Platform, catalog[0].Platform)

	// yesterday+today of the same genre share the chart, distinct dates
	count, err := store.Queries().CountChartEntries(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(8), count)

	// rerun: all skipped
	again, err := svc.DailyUpdate(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), again.Inserted)
	require.Equal(t, int64(8), again.Skipped)
}

func TestDailyUpdateStopsOnExpiredSession(t *testing.T) {
	svc, _, site, ctx := setupGated(t)

	// the verification fetch consumes one chart get, then one genre-date
	// succeeds before the session starts serving login pages
	site.expireAfter.Store(2)

	_, err := svc.DailyUpdate(ctx)
	require.ErrorIs(t, err, toptracker.ErrLoginPage)
	require.Equal(t, toptracker.StateInvalid, svc.session.State())
}

func TestDailyUpdateNoSession(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "ingest-nosession",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	store := leadstore.NewStore(res.DB)
	client := beatport.NewClient(fetcher.Options{Timeout: time.Second, MaxRetries: 1, Backoff: time.Millisecond})
	svc := NewService(store, client, nil, Options{Genres: []string{"afro-house"}})

	_, err := svc.DailyUpdate(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}
