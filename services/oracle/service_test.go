package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leadharvest-backend/lib/fetcher"
	"leadharvest-backend/lib/platforms/beatport"
	"leadharvest-backend/lib/platforms/toptracker"

	"github.com/stretchr/testify/require"
)

const beatportChartPage = `
<html><body>
<div data-position="1"><span class="track-title">Deep Signal</span><a href="/artist/kora/1022334">Kora</a><a href="/label/drumcode/831">Drumcode</a></div>
<div data-position="2"><span class="track-title">Midnight Run</span><a href="/artist/velt/445566">Velt</a></div>
<div data-position="3"><span class="track-title">Another One</span><a href="/artist/kora/1022334">Kora</a></div>
<div data-position="4"><span class="track-title">Sign in</span><a href="/artist/x/1">Log in</a></div>
</body></html>`

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

func beatportClient() beatport.Client {
	return beatport.NewClient(fetcher.Options{
		Timeout:    time.Second * 5,
		MaxRetries: 1,
		Backoff:    time.Millisecond,
	})
}

func TestScanBeatport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, beatportChartPage)
	}))
	t.Cleanup(server.Close)

	svc := NewService(beatportClient(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	result, err := svc.Scan(ctx, server.URL+"/genre/afro-house/11/top-100")
	require.NoError(t, err)
	require.Equal(t, beatport.Platform, result.Platform)
	require.Equal(t, beatport.FamilyTopTracks, result.ChartFamily)
	require.Equal(t, "afro-house", result.GenreSlug)
	require.Equal(t, "dataAttr", result.Strategy)
	require.Equal(t, 3, result.RowCount)
	require.Equal(t, 1, result.Filtered)
	// deduped, chart order kept
	require.Equal(t, []string{"Kora", "Velt"}, result.Artists)
}

func TestScanGated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gatedLoginPage)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("GET /home", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>welcome</body></html>")
	})
	mux.HandleFunc("GET /top/track/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Cookie"), "session=") {
			fmt.Fprint(w, gatedChartPage)
			return
		}
		fmt.Fprint(w, gatedLoginPage)
	})
	server := httptest.NewServer(mux)
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

	svc := NewService(beatportClient(), session)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	result, err := svc.Scan(ctx, server.URL+"/top/track/afro-house/2026-08-30")
	require.NoError(t, err)
	require.Equal(t, toptracker.Platform, result.Platform)
	require.Equal(t, "afro-house", result.GenreSlug)
	require.Equal(t, "table", result.Strategy)
	require.Equal(t, 2, result.RowCount)
	require.Equal(t, []string{"Kora", "Velt"}, result.Artists)
}

func TestScanGatedNoSession(t *testing.T) {
	svc := NewService(beatportClient(), nil)
	_, err := svc.Scan(context.Background(), "https://www.bptoptracker.com/top/track/techno")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestScanBadURL(t *testing.T) {
	svc := NewService(beatportClient(), nil)
	_, err := svc.Scan(context.Background(), "not a url")
	require.Error(t, err)
}

func TestScanPreviewCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 1; i <= 150; i++ {
		fmt.Fprintf(&sb, `<div data-position="%d"><span class="track-title">Track %d</span><a href="/artist/a%d/%d">Artist %d</a></div>`, i, i, i, 1000+i, i)
	}
	sb.WriteString("</body></html>")
	page := sb.String()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	t.Cleanup(server.Close)

	svc := NewService(beatportClient(), nil)
	result, err := svc.Scan(context.Background(), server.URL+"/genre/techno/6/top-100")
	require.NoError(t, err)
	require.Equal(t, 150, result.RowCount)
	require.Len(t, result.Artists, 100)
}
