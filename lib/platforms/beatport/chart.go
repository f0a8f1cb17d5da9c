package beatport

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"leadharvest-backend/lib/blocklist"
	"leadharvest-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxRank = 200

type Row struct {
	Position    int
	TrackTitle  string
	ArtistName  string
	ArtistID    string
	ArtistsFull string
	LabelName   string
	Released    string
}

type ParseResult struct {
	// which extraction strategy produced the rows
	Strategy string
	Rows     []Row
	// rows dropped by rank/blocklist validity checks
	Filtered int
}

var ErrNoRows = fmt.Errorf("no chart rows found")

var artistHref = regexp.MustCompile(`/artist/[a-z0-9-]+/(\d+)`)

// artistIDFromHref pulls the numeric platform id out of an
// /artist/{slug}/{id} href.
func artistIDFromHref(href string) string {
	m := artistHref.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

type strategy struct {
	name    string
	extract func(doc *goquery.Document) []Row
}

// ordered: most reliable markup first
var strategies = []strategy{
	{"dataAttr", extractDataAttr},
	{"trackAnchor", extractTrackAnchor},
}

// ParseChart runs extraction strategies in order and returns the first
// result with valid rows. Rows failing rank or blocklist checks are dropped
// before the strategy is judged.
func ParseChart(ctx context.Context, html string) (ParseResult, error) {
	ctx, span := tracer.Start(ctx, "ParseChart")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return ParseResult{}, err
	}

	for _, s := range strategies {
		rows, filtered := filterRows(s.extract(doc))
		if len(rows) == 0 {
			continue
		}
		span.SetAttributes(
			attribute.String("strategy", s.name),
			attribute.Int("rows", len(rows)),
		)
		return ParseResult{Strategy: s.name, Rows: rows, Filtered: filtered}, nil
	}

	span.SetStatus(codes.Error, ErrNoRows.Error())
	return ParseResult{}, ErrNoRows
}

func validRow(r Row) bool {
	if r.Position < 1 || r.Position > maxRank {
		return false
	}
	if r.TrackTitle == "" && r.ArtistName == "" {
		return false
	}
	if blocklist.IsBlockedArtist(r.ArtistName) {
		return false
	}
	if blocklist.IsBlockedTrack(r.TrackTitle) {
		return false
	}
	return true
}

func filterRows(rows []Row) ([]Row, int) {
	var out []Row
	for _, r := range rows {
		if validRow(r) {
			out = append(out, r)
		}
	}
	return out, len(rows) - len(out)
}

// extractDataAttr targets the react-rendered chart list: items carrying a
// data-position attribute or the bucket/chart list item classes.
func extractDataAttr(doc *goquery.Document) []Row {
	items := doc.Find("[data-position]")
	if items.Length() == 0 {
		items = doc.Find("div[class*='bucket-item'], li[class*='chart-list-item'], div[class*='chart-list-item']")
	}

	var rows []Row
	items.Each(func(i int, item *goquery.Selection) {
		position := i + 1
		if attr := item.AttrOr("data-position", ""); attr != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(attr)); err == nil {
				position = n
			}
		}

		title := htmlutil.CleanText(item.Find("[class*='track-title'], [class*='ReleaseName'], a[href*='/track/'], a[href*='/release/']").First().Text())

		var artistNames []string
		var artistID string
		item.Find("a[href*='/artist/']").Each(func(_ int, a *goquery.Selection) {
			name := htmlutil.CleanText(a.Text())
			if name == "" {
				return
			}
			artistNames = append(artistNames, name)
			if artistID == "" {
				artistID = artistIDFromHref(a.AttrOr("href", ""))
			}
		})

		label := htmlutil.CleanText(item.Find("a[href*='/label/']").First().Text())
		released := htmlutil.CleanText(item.Find("[class*='release-date'], [class*='ReleaseDate']").First().Text())

		var primary string
		if len(artistNames) > 0 {
			primary = artistNames[0]
		}
		rows = append(rows, Row{
			Position:    position,
			TrackTitle:  title,
			ArtistName:  primary,
			ArtistID:    artistID,
			ArtistsFull: strings.Join(artistNames, ", "),
			LabelName:   label,
			Released:    released,
		})
	})
	return rows
}

// extractTrackAnchor is the fallback for stripped-down markup: one row per
// /track/ (or /release/) anchor, with artist and label anchors looked up in
// the nearest enclosing container.
func extractTrackAnchor(doc *goquery.Document) []Row {
	anchors := doc.Find("a[href*='/track/']")
	if anchors.Length() == 0 {
		anchors = doc.Find("a[href*='/release/']")
	}

	seen := map[string]struct{}{}
	var rows []Row
	anchors.Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		title := htmlutil.CleanText(a.Text())
		if title == "" {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}

		container := a.Closest("li, tr, div")

		var artistNames []string
		var artistID string
		container.Find("a[href*='/artist/']").Each(func(_ int, artist *goquery.Selection) {
			name := htmlutil.CleanText(artist.Text())
			if name == "" {
				return
			}
			artistNames = append(artistNames, name)
			if artistID == "" {
				artistID = artistIDFromHref(artist.AttrOr("href", ""))
			}
		})

		var primary string
		if len(artistNames) > 0 {
			primary = artistNames[0]
		}
		rows = append(rows, Row{
			Position:    len(rows) + 1,
			TrackTitle:  title,
			ArtistName:  primary,
			ArtistID:    artistID,
			ArtistsFull: strings.Join(artistNames, ", "),
			LabelName:   htmlutil.CleanText(container.Find("a[href*='/label/']").First().Text()),
		})
	})
	return rows
}
