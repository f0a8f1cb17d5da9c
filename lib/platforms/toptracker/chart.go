package toptracker

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

var (
	ErrLoginPage = fmt.Errorf("response is a login page, not a chart")
	ErrNoRows    = fmt.Errorf("no chart rows found")
)

type Row struct {
	Position    int
	Movement    string
	TrackTitle  string
	ArtistName  string
	ArtistsFull string
	LabelName   string
	Released    string
}

type ParseResult struct {
	Strategy string
	Rows     []Row
	// rows dropped by rank/blocklist validity checks
	Filtered int
}

// leading rank with an optional movement glyph, e.g. "3 ↑2", "17↓", "1 →"
var rankMovement = regexp.MustCompile(`^\s*(\d{1,3})\s*([↑↓→]\s*\d*)?`)

func splitRank(text string) (int, string, bool) {
	m := rankMovement.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	rank, err := strconv.Atoi(m[1])
	if err != nil || rank < 1 || rank > maxRank {
		return 0, "", false
	}
	return rank, strings.ReplaceAll(strings.TrimSpace(m[2]), " ", ""), true
}

type strategy struct {
	name    string
	extract func(doc *goquery.Document) []Row
}

var strategies = []strategy{
	{"table", extractTable},
	{"classHint", extractClassHint},
	{"anchor", extractAnchor},
}

// ParseChart parses one gated chart page. A body classifying as a login
// page returns ErrLoginPage so the caller can invalidate the session instead
// of recording an empty day.
func ParseChart(ctx context.Context, html string) (ParseResult, error) {
	ctx, span := tracer.Start(ctx, "ParseChart")
	defer span.End()

	if blocklist.LooksLikeLoginOrLandingPage(html) {
		span.SetStatus(codes.Error, ErrLoginPage.Error())
		return ParseResult{}, ErrLoginPage
	}

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

func splitArtists(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.Split(full, ",")
	return strings.TrimSpace(parts[0]), full
}

// extractTable handles the canonical markup: a table whose rows carry rank
// and movement in the first cell, then title, artists, label, release date.
func extractTable(doc *goquery.Document) []Row {
	var rows []Row
	doc.Find("table tbody tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 3 {
			return
		}

		rank, movement, ok := splitRank(htmlutil.CleanText(tds.Eq(0).Text()))
		if !ok {
			return
		}

		title := htmlutil.CleanText(tds.Eq(1).Find("[class*='title']").First().Text())
		artistsFull := htmlutil.CleanText(tds.Eq(1).Find("[class*='artist']").First().Text())
		if title == "" && artistsFull == "" {
			// flat cells: title in one td, artists in the next
			title = htmlutil.CleanText(tds.Eq(1).Text())
			artistsFull = htmlutil.CleanText(tds.Eq(2).Text())
		}

		var label, released string
		if tds.Length() > 3 {
			label = htmlutil.CleanText(tds.Eq(3).Text())
		}
		if tds.Length() > 4 {
			released = htmlutil.CleanText(tds.Eq(4).Text())
		}

		primary, full := splitArtists(artistsFull)
		rows = append(rows, Row{
			Position:    rank,
			Movement:    movement,
			TrackTitle:  title,
			ArtistName:  primary,
			ArtistsFull: full,
			LabelName:   label,
			Released:    released,
		})
	})
	return rows
}

// extractClassHint handles div-based markup where cells are tagged with
// rank/title/artist class fragments instead of table cells.
func extractClassHint(doc *goquery.Document) []Row {
	var rows []Row
	doc.Find("[class*='chart-row'], [class*='chart-item'], [class*='track-row']").Each(func(i int, item *goquery.Selection) {
		rankText := htmlutil.CleanText(item.Find("[class*='rank'], [class*='position'], [class*='number']").First().Text())
		rank, movement, ok := splitRank(rankText)
		if !ok {
			rank = i + 1
		}

		title := htmlutil.CleanText(item.Find("[class*='title']").First().Text())
		artistsFull := htmlutil.CleanText(item.Find("[class*='artist']").First().Text())
		primary, full := splitArtists(artistsFull)

		rows = append(rows, Row{
			Position:    rank,
			Movement:    movement,
			TrackTitle:  title,
			ArtistName:  primary,
			ArtistsFull: full,
			LabelName:   htmlutil.CleanText(item.Find("[class*='label']").First().Text()),
		})
	})
	return rows
}

// extractAnchor is the last resort: artist profile anchors in document
// order, one row per distinct artist, no titles.
func extractAnchor(doc *goquery.Document) []Row {
	seen := map[string]struct{}{}
	var rows []Row
	doc.Find("a[href*='/artist/']").Each(func(_ int, a *goquery.Selection) {
		name := htmlutil.CleanText(a.Text())
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		rows = append(rows, Row{
			Position:    len(rows) + 1,
			ArtistName:  name,
			ArtistsFull: name,
		})
	})
	return rows
}
