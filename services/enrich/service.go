// Package enrich pulls short bio/role/insight blurbs for resolved artists
// from an external API and caches them in artist_enrichment. The whole
// feature sits behind an API key and stays dormant without one.
package enrich

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/telemetry"
	"leadharvest-backend/lib/timezone"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("leadharvest.services.enrich")

const DefaultBaseUrl = "https://api.sonarpulse.io"

var ErrDisabled = fmt.Errorf("enrichment is not configured, set an API key to enable it")

type Options struct {
	APIKey  string
	BaseUrl string
	Timeout time.Duration
}

type Service struct {
	store leadstore.Store
	qry   *db.Queries
	http  *resty.Client
	opts  Options
}

func NewService(store leadstore.Store, opts Options) Service {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(opts.Timeout)
	client.SetAuthToken(opts.APIKey)
	client.SetHeader("Accept", "application/json")
	telemetry.InstrumentResty(client, "enrich/http")

	return Service{
		store: store,
		qry:   store.Queries(),
		http:  client,
		opts:  opts,
	}
}

// Enabled reports whether an API key is configured.
func (s Service) Enabled() bool {
	return s.opts.APIKey != ""
}

// Enrich returns the cached enrichment for an artist, calling the upstream
// API on a cache miss. Without an API key it fails with ErrDisabled.
func (s Service) Enrich(ctx context.Context, artistID string) (db.ArtistEnrichment, error) {
	ctx, span := tracer.Start(ctx, "Enrich")
	defer span.End()
	span.SetAttributes(attribute.String("artist_id", artistID))

	if !s.Enabled() {
		return db.ArtistEnrichment{}, ErrDisabled
	}

	cached, err := s.qry.GetEnrichment(ctx, artistID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.ArtistEnrichment{}, err
	}

	artist, err := s.qry.GetArtist(ctx, artistID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.ArtistEnrichment{}, fmt.Errorf("unknown artist %q", artistID)
		}
		return db.ArtistEnrichment{}, err
	}

	metrics, err := s.qry.GetArtistMetrics(ctx, artistID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return db.ArtistEnrichment{}, err
	}

	profile, err := s.lookup(ctx, artist.Name, metrics.Genres)
	if err != nil {
		return db.ArtistEnrichment{}, fmt.Errorf("enriching %q: %w", artist.Name, err)
	}

	row := db.UpsertEnrichmentParams{
		ArtistID:   artistID,
		BioSummary: profile.Bio,
		Role:       profile.Role,
		Insight:    profile.Insight,
		EnrichedAt: timezone.Date(timezone.Now()),
	}
	if err := s.qry.UpsertEnrichment(ctx, row); err != nil {
		return db.ArtistEnrichment{}, err
	}

	slog.InfoContext(ctx, "artist enriched", "artist_id", artistID, "name", artist.Name)
	return db.ArtistEnrichment{
		ArtistID:   row.ArtistID,
		BioSummary: row.BioSummary,
		Role:       row.Role,
		Insight:    row.Insight,
		EnrichedAt: row.EnrichedAt,
	}, nil
}

type artistProfile struct {
	Bio     string `json:"bio"`
	Role    string `json:"role"`
	Insight string `json:"insight"`
}

// envelope keys are raw so presence and shape can be checked separately.
// Anything outside the three known shapes is rejected, never field-guessed.
type envelope struct {
	Artist json.RawMessage `json:"artist"`
	Data   json.RawMessage `json:"data"`
	Error  json.RawMessage `json:"error"`
}

type upstreamError struct {
	Message string `json:"message"`
}

func (s Service) lookup(ctx context.Context, name, genres string) (artistProfile, error) {
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"artist_name": name, "genres": genres}).
		Post("/v1/artists/enrich")
	if err != nil {
		return artistProfile{}, err
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return artistProfile{}, fmt.Errorf("API key rejected (HTTP %d)", resp.StatusCode())
	}
	if resp.StatusCode() >= 400 {
		return artistProfile{}, fmt.Errorf("upstream HTTP %d", resp.StatusCode())
	}
	return decodeProfile(resp.Body())
}

// decodeProfile accepts exactly three upstream shapes: an "artist" object,
// a "data" list (first element wins) or an "error".
func decodeProfile(body []byte) (artistProfile, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return artistProfile{}, fmt.Errorf("upstream sent non-JSON: %w", err)
	}

	switch {
	case len(env.Error) > 0:
		var message string
		if err := json.Unmarshal(env.Error, &message); err != nil {
			var obj upstreamError
			if err := json.Unmarshal(env.Error, &obj); err != nil {
				return artistProfile{}, fmt.Errorf("upstream error in unknown shape: %s", env.Error)
			}
			message = obj.Message
		}
		return artistProfile{}, fmt.Errorf("upstream error: %s", message)

	case len(env.Artist) > 0:
		var profile artistProfile
		if err := json.Unmarshal(env.Artist, &profile); err != nil {
			return artistProfile{}, fmt.Errorf("unrecognized artist shape: %w", err)
		}
		return profile, nil

	case len(env.Data) > 0:
		var profiles []artistProfile
		if err := json.Unmarshal(env.Data, &profiles); err != nil {
			return artistProfile{}, fmt.Errorf("unrecognized data shape: %w", err)
		}
		if len(profiles) == 0 {
			return artistProfile{}, fmt.Errorf("upstream returned an empty data list")
		}
		return profiles[0], nil

	default:
		return artistProfile{}, fmt.Errorf("unrecognized response shape: %s", body)
	}
}
