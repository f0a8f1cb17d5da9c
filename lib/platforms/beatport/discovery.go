package beatport

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"leadharvest-backend/lib/htmlutil"
	"leadharvest-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Families a chart url/title can classify into.
const (
	FamilyTopTracks    = "top_tracks"
	FamilyHypeTracks   = "hype_tracks"
	FamilyTopReleases  = "top_releases"
	FamilyHypeReleases = "hype_releases"
)

var genreHref = regexp.MustCompile(`^/genre/([a-z0-9-]+)/(\d+)/?$`)

type Genre struct {
	Slug string
	Name string
	Url  string
}

// ParseGenres pulls every /genre/{slug}/{id} link out of the index page.
// Duplicate slugs collapse to the first occurrence; relative hrefs resolve
// against base.
func ParseGenres(html string, base *url.URL) ([]Genre, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var genres []Genre
	doc.Find("a[href*='/genre/']").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		m := genreHref.FindStringSubmatch(u.Path)
		if m == nil {
			return
		}
		slug := m[1]
		if _, ok := seen[slug]; ok {
			return
		}
		seen[slug] = struct{}{}

		name := htmlutil.CleanText(a.Text())
		if name == "" {
			name = titleFromSlug(slug)
		}
		genres = append(genres, Genre{
			Slug: slug,
			Name: name,
			Url:  u.String(),
		})
	})
	return genres, nil
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

type ChartLink struct {
	Url    string
	Title  string
	Family string
}

// chart link hrefs look like /genre/{slug}/{id}/top-100,
// /genre/{slug}/{id}/hype-100, .../releases or /charts/{slug}/{id}
var chartHref = regexp.MustCompile(`/(top-100|hype-100|top-10|releases|tracks|charts?)(/|$)`)

// ParseChartLinks finds chart pages linked from a genre page and classifies
// each into a family. Relative hrefs resolve against base.
func ParseChartLinks(html string, base *url.URL) ([]ChartLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var links []ChartLink
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		if !chartHref.MatchString(u.Path) {
			return
		}
		u.RawQuery = ""
		u.Fragment = ""
		full := u.String()
		if _, ok := seen[full]; ok {
			return
		}
		seen[full] = struct{}{}

		title := htmlutil.CleanText(a.Text())
		links = append(links, ChartLink{
			Url:    full,
			Title:  title,
			Family: ClassifyFamily(full, title),
		})
	})
	return links, nil
}

// ClassifyFamily buckets a chart by hype-vs-top and tracks-vs-releases,
// looking at the url first and the link title as a tiebreaker.
func ClassifyFamily(chartUrl, title string) string {
	haystack := strings.ToLower(chartUrl) + " " + textutil.NormalizeName(title)

	hype := strings.Contains(haystack, "hype")
	release := strings.Contains(haystack, "release")

	switch {
	case hype && release:
		return FamilyHypeReleases
	case hype:
		return FamilyHypeTracks
	case release:
		return FamilyTopReleases
	default:
		return FamilyTopTracks
	}
}

// GenreSlugFromURL extracts the genre slug from a /genre/{slug}/... path,
// or "" when the url is not genre-scoped.
func GenreSlugFromURL(chartUrl string) string {
	u, err := url.Parse(chartUrl)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "genre" {
		return parts[1]
	}
	return ""
}
