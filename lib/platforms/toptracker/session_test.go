package toptracker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"leadharvest-backend/lib/fetcher"

	"github.com/stretchr/testify/require"
)

const loginPageFixture = `
<html><body>
<form action="/search" method="get">
  <input type="text" name="q">
</form>
<form action="/login" method="post">
  <input type="hidden" name="_token" value="csrf-abc-123">
  <input type="email" name="email">
  <input type="password" name="password">
  <button>Sign in</button>
</form>
</body></html>`

const chartBodyFixture = `
<html><body>
<h1>Afro House Top 100 chart</h1>
<table><tbody>
<tr><td>1</td><td><span class="title">Deep Signal</span><span class="artist">Kora</span></td><td><span class="label">Drumcode</span></td></tr>
</tbody></table>
</body></html>`

type fakeSite struct {
	loginGets  atomic.Int64
	loginPosts atomic.Int64
	chartGets  atomic.Int64
	// what the chart endpoint serves after login
	chartBody atomic.Value
}

func newFakeSite(chartBody string) *fakeSite {
	site := &fakeSite{}
	site.chartBody.Store(chartBody)
	return site
}

func (f *fakeSite) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		f.loginGets.Add(1)
		fmt.Fprint(w, loginPageFixture)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		f.loginPosts.Add(1)
		r.ParseForm()
		if r.PostFormValue("_token") != "csrf-abc-123" {
			http.Error(w, "csrf mismatch", http.StatusUnprocessableEntity)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cret", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "xsrf", Value: "x5rf", Path: "/"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("GET /home", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>welcome</body></html>")
	})
	mux.HandleFunc("GET /top/track/", func(w http.ResponseWriter, r *http.Request) {
		f.chartGets.Add(1)
		fmt.Fprint(w, f.chartBody.Load().(string))
	})
	return mux
}

func newTestSession(t *testing.T, site *fakeSite, creds Credentials) *SessionStore {
	server := httptest.NewServer(site.handler())
	t.Cleanup(server.Close)

	store, err := NewSessionStore(SessionOptions{
		BaseUrl:     server.URL,
		Credentials: creds,
		Fetcher: fetcher.Options{
			Timeout:    time.Second * 5,
			MaxRetries: 1,
			Backoff:    time.Millisecond,
		},
	})
	require.NoError(t, err)
	return store
}

func TestSessionLogin(t *testing.T) {
	site := newFakeSite(chartBodyFixture)
	store := newTestSession(t, site, Credentials{Email: "a@b.c", Password: "pw"})

	ctx := context.Background()
	cookie, err := store.Get(ctx)
	require.NoError(t, err)
	require.Contains(t, cookie, "session=s3cret")
	require.Contains(t, cookie, "xsrf=x5rf")
	require.Equal(t, StateAuthenticated, store.State())

	// second call reuses the cached cookie
	again, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, cookie, again)
	require.Equal(t, int64(1), site.loginGets.Load())
	require.Equal(t, int64(1), site.loginPosts.Load())
	require.Equal(t, int64(1), site.chartGets.Load())
}

func TestSessionVerifyRejectsLoginPage(t *testing.T) {
	// the chart endpoint keeps serving the login page: bad credentials
	site := newFakeSite(loginPageFixture)
	store := newTestSession(t, site, Credentials{Email: "a@b.c", Password: "wrong"})

	ctx := context.Background()
	_, err := store.Get(ctx)
	require.ErrorIs(t, err, ErrSessionInvalid)
	require.Equal(t, StateInvalid, store.State())
	require.Contains(t, store.Reason(), "login page")

	// negative cache: no further network traffic
	posts := site.loginPosts.Load()
	_, err = store.Get(ctx)
	require.ErrorIs(t, err, ErrSessionInvalid)
	require.Equal(t, posts, site.loginPosts.Load())

	// Clear allows a retry
	site.chartBody.Store(chartBodyFixture)
	store.Clear()
	cookie, err := store.Get(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cookie)
}

func TestSessionStaticCookie(t *testing.T) {
	site := newFakeSite(chartBodyFixture)
	store := newTestSession(t, site, Credentials{StaticCookie: "session=static"})

	cookie, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "session=static", cookie)
	require.Equal(t, int64(0), site.loginGets.Load())
}

func TestSessionNoCredentials(t *testing.T) {
	site := newFakeSite(chartBodyFixture)
	store := newTestSession(t, site, Credentials{})

	_, err := store.Get(context.Background())
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestSessionInvalidate(t *testing.T) {
	site := newFakeSite(chartBodyFixture)
	store := newTestSession(t, site, Credentials{Email: "a@b.c", Password: "pw"})

	ctx := context.Background()
	_, err := store.Get(ctx)
	require.NoError(t, err)

	store.Invalidate("expired mid-run")
	_, err = store.Get(ctx)
	require.ErrorIs(t, err, ErrSessionInvalid)
	require.Equal(t, "expired mid-run", store.Reason())
}
