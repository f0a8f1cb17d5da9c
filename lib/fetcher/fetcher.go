// Package fetcher is the shared resilient HTTP layer: bounded per-attempt
// timeout, bounded retries with linearly increasing delay, desktop browser
// headers. Every scraping component goes through it; callers decide whether
// a failure is per-item (absorbed) or fatal (propagated).
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/fetcher")

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	defaultBackoff    = time.Second
)

// StatusError is a non-2xx response. Retried up to the retry budget, then
// surfaced to the caller component.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Code, e.URL)
}

// IsNotFound reports whether err is an HTTP 404. The backfill engine uses
// this to distinguish "wrong genre slug" from "no data for that day".
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 404
}

type Options struct {
	// per-attempt timeout, not a whole-call budget
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	UserAgent  string
}

type Client struct {
	http       *resty.Client
	maxRetries int
	backoff    time.Duration
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Backoff == 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")

	return &Client{
		http:       client,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
	}
}

// Resty exposes the underlying client so platform packages can layer
// transports (cloudflare bypass) and instrumentation onto it.
func (c *Client) Resty() *resty.Client {
	return c.http
}

// Fetch GETs a url and returns the body. On a network failure or non-2xx
// status it retries up to MaxRetries with linearly increasing delay, then
// returns the last error.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	return c.fetch(ctx, url, "")
}

// FetchWithCookie is Fetch with an explicit Cookie header, used for the
// gated source where the session cookie is managed outside the cookie jar.
func (c *Client) FetchWithCookie(ctx context.Context, url, cookie string) (string, error) {
	return c.fetch(ctx, url, cookie)
}

func (c *Client) fetch(ctx context.Context, url, cookie string) (string, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req := c.http.R().SetContext(ctx)
		if cookie != "" {
			req.SetHeader("Cookie", cookie)
		}
		res, err := req.Get(url)
		if err != nil {
			lastErr = err
			continue
		}
		if res.StatusCode() < 200 || res.StatusCode() > 299 {
			lastErr = &StatusError{Code: res.StatusCode(), URL: url}
			continue
		}

		span.SetAttributes(attribute.Int("attempts", attempt+1))
		return string(res.Body()), nil
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "retries exhausted")
	return "", lastErr
}
