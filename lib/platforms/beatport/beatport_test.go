package beatport

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const indexFixture = `
<html><body>
<nav>
  <a href="/genre/afro-house/89">Afro House</a>
  <a href="/genre/techno-peak-time-driving/6">Techno (Peak Time / Driving)</a>
  <a href="/genre/afro-house/89">Afro House</a>
  <a href="https://www.beatport.com/genre/melodic-house-techno/90">Melodic House &amp; Techno</a>
  <a href="/genre/afro-house/89/top-100">Top 100</a>
  <a href="/account">Account</a>
</nav>
</body></html>`

func TestParseGenres(t *testing.T) {
	base, err := url.Parse(BaseUrl)
	require.NoError(t, err)

	genres, err := ParseGenres(indexFixture, base)
	require.NoError(t, err)
	require.Len(t, genres, 3)
	require.Equal(t, "afro-house", genres[0].Slug)
	require.Equal(t, "Afro House", genres[0].Name)
	require.Equal(t, "https://www.beatport.com/genre/afro-house/89", genres[0].Url)
	require.Equal(t, "melodic-house-techno", genres[2].Slug)
}

const genrePageFixture = `
<html><body>
<a href="/genre/afro-house/89/top-100">Afro House Top 100</a>
<a href="/genre/afro-house/89/hype-100">Hype 100</a>
<a href="/genre/afro-house/89/top-100/releases">Top 100 Releases</a>
<a href="/genre/afro-house/89/hype-100/releases">Hype Top 100 Releases</a>
<a href="/genre/afro-house/89/top-100?page=2">Afro House Top 100</a>
<a href="/about">About</a>
</body></html>`

func TestParseChartLinks(t *testing.T) {
	base, err := url.Parse("https://www.beatport.com/genre/afro-house/89")
	require.NoError(t, err)

	links, err := ParseChartLinks(genrePageFixture, base)
	require.NoError(t, err)
	// the ?page=2 variant dedupes into the first link
	require.Len(t, links, 4)

	families := map[string]string{}
	for _, l := range links {
		families[l.Url] = l.Family
	}
	require.Equal(t, FamilyTopTracks, families["https://www.beatport.com/genre/afro-house/89/top-100"])
	require.Equal(t, FamilyHypeTracks, families["https://www.beatport.com/genre/afro-house/89/hype-100"])
	require.Equal(t, FamilyTopReleases, families["https://www.beatport.com/genre/afro-house/89/top-100/releases"])
	require.Equal(t, FamilyHypeReleases, families["https://www.beatport.com/genre/afro-house/89/hype-100/releases"])
}

func TestClassifyFamily(t *testing.T) {
	require.Equal(t, FamilyTopTracks, ClassifyFamily("https://www.beatport.com/genre/techno/6/top-100", ""))
	require.Equal(t, FamilyHypeTracks, ClassifyFamily("https://www.beatport.com/genre/techno/6/hype-100", ""))
	require.Equal(t, FamilyTopReleases, ClassifyFamily("https://www.beatport.com/charts/x/1", "New Releases Chart"))
	require.Equal(t, FamilyHypeReleases, ClassifyFamily("", "Hype Releases"))
}

func TestGenreSlugFromURL(t *testing.T) {
	require.Equal(t, "afro-house", GenreSlugFromURL("https://www.beatport.com/genre/afro-house/89/top-100"))
	require.Equal(t, "", GenreSlugFromURL("https://www.beatport.com/charts/weekend-picks/1"))
}

const chartDataAttrFixture = `
<html><body>
<div data-position="1" class="row">
  <span class="track-title">Deep Signal</span>
  <a href="/artist/kora/1022334">Kora</a>
  <a href="/artist/velt/445566">Velt</a>
  <a href="/label/drumcode/831">Drumcode</a>
  <span class="release-date">2026-07-14</span>
</div>
<div data-position="2" class="row">
  <span class="track-title">Midnight Run</span>
  <a href="/artist/velt/445566">Velt</a>
</div>
<div data-position="3" class="row">
  <span class="track-title">Create an Account</span>
  <a href="/artist/x/1">Log In</a>
</div>
</body></html>`

func TestParseChartDataAttr(t *testing.T) {
	res, err := ParseChart(context.Background(), chartDataAttrFixture)
	require.NoError(t, err)
	require.Equal(t, "dataAttr", res.Strategy)
	require.Len(t, res.Rows, 2)

	first := res.Rows[0]
	require.Equal(t, 1, first.Position)
	require.Equal(t, "Deep Signal", first.TrackTitle)
	require.Equal(t, "Kora", first.ArtistName)
	require.Equal(t, "1022334", first.ArtistID)
	require.Equal(t, "Kora, Velt", first.ArtistsFull)
	require.Equal(t, "Drumcode", first.LabelName)
	require.Equal(t, "2026-07-14", first.Released)
}

const chartAnchorFixture = `
<html><body>
<ul>
  <li><a href="/track/deep-signal/111">Deep Signal</a> <a href="/artist/kora/1022334">Kora</a> <a href="/label/drumcode/831">Drumcode</a></li>
  <li><a href="/track/midnight-run/222">Midnight Run</a> <a href="/artist/velt/445566">Velt</a></li>
</ul>
</body></html>`

func TestParseChartAnchorFallback(t *testing.T) {
	res, err := ParseChart(context.Background(), chartAnchorFixture)
	require.NoError(t, err)
	require.Equal(t, "trackAnchor", res.Strategy)
	require.Len(t, res.Rows, 2)
	require.Equal(t, 1, res.Rows[0].Position)
	require.Equal(t, "Kora", res.Rows[0].ArtistName)
	require.Equal(t, "1022334", res.Rows[0].ArtistID)
	require.Equal(t, 2, res.Rows[1].Position)
}

func TestParseChartNoRows(t *testing.T) {
	_, err := ParseChart(context.Background(), "<html><body><p>nothing here</p></body></html>")
	require.ErrorIs(t, err, ErrNoRows)
}
