// Package toptracker scrapes the gated chart-history source. Access needs a
// logged-in session cookie, managed by SessionStore; chart pages are plain
// HTML tables once authenticated.
package toptracker

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"leadharvest-backend/lib/blocklist"
	"leadharvest-backend/lib/fetcher"
	"leadharvest-backend/lib/telemetry"
	"leadharvest-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("platforms/toptracker")

const (
	Platform = "bptoptracker"
	BaseUrl  = "https://www.bptoptracker.com"
)

var (
	ErrNoCredentials  = fmt.Errorf("no credentials configured")
	ErrSessionInvalid = fmt.Errorf("session invalid")
)

type State int

const (
	StateNoCredentials State = iota
	StateAuthenticated
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateInvalid:
		return "invalid"
	default:
		return "no_credentials"
	}
}

type Credentials struct {
	Email    string
	Password string
	// StaticCookie short-circuits login entirely; it is trusted as-is.
	StaticCookie string
}

type SessionOptions struct {
	// defaults to BaseUrl; tests point it at a local server
	BaseUrl     string
	Credentials Credentials
	Fetcher     fetcher.Options
}

// SessionStore hands out a session cookie for the gated source, logging in
// lazily on first use. A failed login is negative-cached: every Get returns
// ErrSessionInvalid without touching the network until Clear is called.
type SessionStore struct {
	creds   Credentials
	baseUrl *url.URL
	http    *resty.Client
	fetch   *fetcher.Client

	mu     sync.Mutex
	cookie string
	state  State
	reason string
}

func NewSessionStore(opts SessionOptions) (*SessionStore, error) {
	base := opts.BaseUrl
	if base == "" {
		base = BaseUrl
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	fc := fetcher.New(opts.Fetcher)
	telemetry.InstrumentResty(fc.Resty(), "platform/toptracker/http")

	login := resty.New()
	login.SetBaseURL(base)
	login.SetTimeout(time.Second * 30)
	login.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	login.SetCookieJar(jar)
	// follow at most one redirect per request; the post-login redirect is
	// where the session cookie gets finalized
	login.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		if len(via) > 1 {
			return http.ErrUseLastResponse
		}
		return nil
	}))
	telemetry.InstrumentResty(login, "platform/toptracker/login")

	return &SessionStore{
		creds:   opts.Credentials,
		baseUrl: baseUrl,
		http:    login,
		fetch:   fc,
	}, nil
}

// Get returns a cookie usable for gated chart fetches. It logs in and
// verifies on first call; afterwards the cached cookie (or cached failure)
// is returned.
func (s *SessionStore) Get(ctx context.Context) (string, error) {
	if s.creds.StaticCookie != "" {
		return s.creds.StaticCookie, nil
	}
	if s.creds.Email == "" || s.creds.Password == "" {
		return "", ErrNoCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAuthenticated:
		return s.cookie, nil
	case StateInvalid:
		return "", fmt.Errorf("%w: %s", ErrSessionInvalid, s.reason)
	}

	cookie, err := s.login(ctx)
	if err != nil {
		s.state = StateInvalid
		s.reason = err.Error()
		return "", fmt.Errorf("%w: %s", ErrSessionInvalid, s.reason)
	}

	s.cookie = cookie
	s.state = StateAuthenticated
	return cookie, nil
}

// Clear drops the cached cookie and any negative-cached failure, so the
// next Get attempts a fresh login.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookie = ""
	s.state = StateNoCredentials
	s.reason = ""
}

// Invalidate marks the session bad with a human-readable reason, e.g. when
// a chart fetch came back as a login page mid-run.
func (s *SessionStore) Invalidate(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookie = ""
	s.state = StateInvalid
	s.reason = reason
}

func (s *SessionStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SessionStore) Reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *SessionStore) login(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "session:login")
	defer span.End()

	res, err := s.http.R().
		SetContext(ctx).
		Get("/login")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse login page")
		return "", err
	}

	// the login form is whichever form holds the password input; the page
	// also has a search form that must not be picked up
	form := doc.Find("input[type=password]").First().Closest("form")
	if form.Length() == 0 {
		span.SetStatus(codes.Error, "no password form found")
		return "", fmt.Errorf("login page has no password form")
	}

	token := form.Find("input[name=_token]").AttrOr("value", "")
	tokenField := "_token"
	if token == "" {
		token = form.Find("input[name=csrf_token]").AttrOr("value", "")
		tokenField = "csrf_token"
	}
	if token == "" {
		span.SetStatus(codes.Error, "no csrf token found")
		return "", fmt.Errorf("login page has no csrf token")
	}

	// field name for the identity varies between deployments
	identityField := "email"
	if form.Find("input[name=email]").Length() == 0 {
		identityField = "login"
	}

	values := url.Values{
		tokenField:    {token},
		identityField: {s.creds.Email},
		"password":    {s.creds.Password},
	}

	res, err = s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(values.Encode()).
		Post("/login")
	if err != nil {
		span.SetStatus(codes.Error, "login post failed")
		return "", err
	}
	if res.StatusCode() >= 400 {
		span.SetStatus(codes.Error, "login rejected")
		return "", fmt.Errorf("login rejected with HTTP %d", res.StatusCode())
	}

	cookie := s.sessionCookie()
	if cookie == "" {
		span.SetStatus(codes.Error, "no session cookie set")
		return "", fmt.Errorf("login response set no cookies")
	}

	if err := s.verify(ctx, cookie); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return cookie, nil
}

// sessionCookie joins the first two cookies the site set into a Cookie
// header value. The site uses a session id plus an xsrf pair; anything past
// the first two is tracking noise.
func (s *SessionStore) sessionCookie() string {
	cookies := s.http.GetClient().Jar.Cookies(s.baseUrl)
	if len(cookies) > 2 {
		cookies = cookies[:2]
	}
	var pairs []string
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// verify fetches one gated chart and rejects the session if the body still
// classifies as a login page.
func (s *SessionStore) verify(ctx context.Context, cookie string) error {
	link := s.baseUrl.String() + "/top/track/afro-house/" + timezone.Yesterday()
	body, err := s.fetch.FetchWithCookie(ctx, link, cookie)
	if err != nil {
		return fmt.Errorf("verification fetch failed: %w", err)
	}
	if blocklist.LooksLikeLoginOrLandingPage(body) {
		return fmt.Errorf("credentials rejected, still seeing the login page")
	}
	return nil
}

// Fetcher exposes the instrumented fetch client for gated chart downloads.
func (s *SessionStore) Fetcher() *fetcher.Client {
	return s.fetch
}

// ChartURL builds the gated chart page url for a genre slug and date.
func (s *SessionStore) ChartURL(genre, date string) string {
	return s.baseUrl.String() + "/top/track/" + genre + "/" + date
}
