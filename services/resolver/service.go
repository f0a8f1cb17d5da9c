// Package resolver maps raw scraped artist names to canonical artist rows.
// Precedence: a manual link set by a human always wins, then an exact
// normalized-name match, then a new artist is created.
package resolver

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"leadharvest-backend/lib/leadstore"
	"leadharvest-backend/lib/leadstore/db"
	"leadharvest-backend/lib/textutil"
	"leadharvest-backend/lib/timezone"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("leadharvest.services.resolver")

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

// RawArtist is one scraped artist occurrence. PlatformID is the platform's
// native numeric id when the markup exposed it, otherwise empty.
type RawArtist struct {
	Name       string
	PlatformID string
}

// canonicalID picks the stable artist id: the platform-native id when known,
// otherwise a synthetic "platform:slug" id.
func canonicalID(platform string, raw RawArtist) string {
	if raw.PlatformID != "" {
		return raw.PlatformID
	}
	return textutil.SyntheticID(platform, raw.Name)
}

// Resolve returns the canonical artist for one raw name, creating it if
// nothing matches. An alias row is recorded either way so future bulk
// resolution can skip the name matching.
func (s Service) Resolve(ctx context.Context, platform string, raw RawArtist) (db.Artist, error) {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("raw_name", raw.Name))

	if link, err := s.qry.GetManualLink(ctx, raw.Name); err == nil {
		return s.qry.GetArtist(ctx, link.ArtistID)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return db.Artist{}, err
	}

	normalized := textutil.NormalizeName(raw.Name)
	artist, err := s.qry.GetArtistByNormalizedName(ctx, normalized)
	if err == nil {
		if aliasErr := s.recordAlias(ctx, platform, raw.Name, artist.ArtistID); aliasErr != nil {
			return db.Artist{}, aliasErr
		}
		return artist, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.Artist{}, err
	}

	return s.create(ctx, platform, raw)
}

func (s Service) create(ctx context.Context, platform string, raw RawArtist) (db.Artist, error) {
	id := canonicalID(platform, raw)
	err := s.qry.CreateArtist(ctx, db.CreateArtistParams{
		ArtistID:       id,
		Name:           raw.Name,
		NormalizedName: textutil.NormalizeName(raw.Name),
		Slug:           textutil.Slugify(raw.Name),
	})
	if err != nil {
		return db.Artist{}, err
	}
	if err := s.recordAlias(ctx, platform, raw.Name, id); err != nil {
		return db.Artist{}, err
	}
	return s.qry.GetArtist(ctx, id)
}

func (s Service) recordAlias(ctx context.Context, platform, rawName, artistID string) error {
	return s.qry.CreateArtistAlias(ctx, db.CreateArtistAliasParams{
		ArtistID: artistID,
		Platform: platform,
		RawName:  rawName,
	})
}

// ResolveBulk resolves a batch of raw names with three queries up front
// instead of three per name. Returns raw name -> artist.
func (s Service) ResolveBulk(ctx context.Context, platform string, raws []RawArtist) (map[string]db.Artist, error) {
	ctx, span := tracer.Start(ctx, "ResolveBulk")
	defer span.End()
	span.SetAttributes(attribute.Int("count", len(raws)))

	// dedupe raw names, keep the first PlatformID seen
	byName := map[string]RawArtist{}
	var names []string
	var normalizedNames []string
	for _, raw := range raws {
		if raw.Name == "" {
			continue
		}
		if existing, ok := byName[raw.Name]; ok {
			if existing.PlatformID == "" && raw.PlatformID != "" {
				byName[raw.Name] = raw
			}
			continue
		}
		byName[raw.Name] = raw
		names = append(names, raw.Name)
		normalizedNames = append(normalizedNames, textutil.NormalizeName(raw.Name))
	}

	links, err := s.qry.ListManualLinksByRawNames(ctx, names)
	if err != nil {
		return nil, err
	}
	linked := map[string]string{}
	for _, l := range links {
		linked[l.RawName] = l.ArtistID
	}

	existing, err := s.qry.ListArtistsByNormalizedNames(ctx, normalizedNames)
	if err != nil {
		return nil, err
	}
	byNormalized := map[string]db.Artist{}
	for _, a := range existing {
		byNormalized[a.NormalizedName] = a
	}

	result := make(map[string]db.Artist, len(names))
	for _, name := range names {
		raw := byName[name]

		if artistID, ok := linked[name]; ok {
			artist, err := s.qry.GetArtist(ctx, artistID)
			if err != nil {
				return nil, err
			}
			result[name] = artist
			continue
		}

		if artist, ok := byNormalized[textutil.NormalizeName(name)]; ok {
			if err := s.recordAlias(ctx, platform, name, artist.ArtistID); err != nil {
				return nil, err
			}
			result[name] = artist
			continue
		}

		artist, err := s.create(ctx, platform, raw)
		if err != nil {
			return nil, err
		}
		byNormalized[artist.NormalizedName] = artist
		result[name] = artist
	}
	return result, nil
}

// ResolveLabel returns the canonical label row for a raw label name,
// creating it on first sight. Label id 0 means "no label".
func (s Service) ResolveLabel(ctx context.Context, name string) (db.Label, error) {
	if textutil.NormalizeName(name) == "" {
		return db.Label{}, nil
	}
	normalized := textutil.NormalizeName(name)

	label, err := s.qry.GetLabelByNormalizedName(ctx, normalized)
	if err == nil {
		return label, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return db.Label{}, err
	}

	err = s.qry.CreateLabel(ctx, db.CreateLabelParams{
		Name:           name,
		NormalizedName: normalized,
	})
	if err != nil {
		return db.Label{}, err
	}
	return s.qry.GetLabelByNormalizedName(ctx, normalized)
}

// RecordTrack upserts a track identified by artist+title+label.
func (s Service) RecordTrack(ctx context.Context, artistID, title string, labelID int64) error {
	if title == "" {
		return nil
	}
	return s.qry.CreateTrack(ctx, db.CreateTrackParams{
		Title:    title,
		ArtistID: artistID,
		LabelID:  labelID,
	})
}

type Suggestion struct {
	Artist      db.Artist
	Correlation float64
}

// Suggest ranks existing artists by Jaro-Winkler similarity to a raw name,
// for the manual-link workflow. Exact normalized matches come back with
// correlation 1.
func (s Service) Suggest(ctx context.Context, rawName string, limit int) ([]Suggestion, error) {
	ctx, span := tracer.Start(ctx, "Suggest")
	defer span.End()

	artists, err := s.qry.ListArtists(ctx)
	if err != nil {
		return nil, err
	}

	normalized := textutil.NormalizeName(rawName)
	suggestions := make([]Suggestion, 0, len(artists))
	for _, a := range artists {
		correlation := matchr.JaroWinkler(normalized, a.NormalizedName, false)
		if correlation <= 0 {
			continue
		}
		suggestions = append(suggestions, Suggestion{Artist: a, Correlation: correlation})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Correlation > suggestions[j].Correlation
	})
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// Link records a manual raw-name -> artist mapping, overriding whatever
// automatic resolution would pick from now on.
func (s Service) Link(ctx context.Context, rawName, artistID string) error {
	if _, err := s.qry.GetArtist(ctx, artistID); err != nil {
		return err
	}
	return s.qry.CreateManualLink(ctx, db.CreateManualLinkParams{
		RawName:   rawName,
		ArtistID:  artistID,
		CreatedAt: timezone.Date(timezone.Now()),
	})
}
