// Package beatport scrapes the public genre index and per-genre Top/Hype
// charts. No authentication, but the site sits behind cloudflare so the
// transport is wrapped with a bypass.
package beatport

import (
	"context"

	"leadharvest-backend/lib/fetcher"
	"leadharvest-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("platforms/beatport")

const (
	Platform = "beatport"
	BaseUrl  = "https://www.beatport.com"
)

type Client struct {
	http *fetcher.Client
}

func NewClient(opts fetcher.Options) Client {
	fc := fetcher.New(opts)
	inner := fc.Resty().GetClient()
	inner.Transport = cloudflarebp.AddCloudFlareByPass(inner.Transport)
	telemetry.InstrumentResty(fc.Resty(), "platform/beatport/http")
	return Client{http: fc}
}

func (c Client) FetchPage(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPage")
	defer span.End()
	return c.http.Fetch(ctx, url)
}

func (c Client) FetchIndex(ctx context.Context) (string, error) {
	return c.FetchPage(ctx, BaseUrl)
}
