package blocklist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsBlockedArtist(t *testing.T) {
	blocked := []string{
		"Sign in",
		"About us →",
		"ABOUT US",
		"Try now",
		"→",
		"© 2013-2026",
		"Top 25",
		"140 / Deep Dubstep / Grime",
		"x",
		"",
		strings.Repeat("a", 90),
	}
	for _, name := range blocked {
		require.True(t, IsBlockedArtist(name), "expected %q to be blocked", name)
	}

	allowed := []string{
		"Boris Brejcha",
		"&ME",
		"Above & Beyond",
		"DJ Heartstring",
	}
	for _, name := range allowed {
		require.False(t, IsBlockedArtist(name), "expected %q to pass", name)
	}
}

func TestIsBlockedTrack(t *testing.T) {
	require.True(t, IsBlockedTrack("Forgot password?"))
	require.True(t, IsBlockedTrack("About us →"))
	require.True(t, IsBlockedTrack("© 2013-2026 BP Top Tracker."))
	// empty titles are legal, some chart families omit them
	require.False(t, IsBlockedTrack(""))
	require.False(t, IsBlockedTrack("Next Episode (Extended Mix)"))
}

func TestLooksLikeLoginOrLandingPage(t *testing.T) {
	loginForm := `<html><body><form action="/login">
		<input name="email" type="text"/>
		<input name="password" type="password"/>
	</form></body></html>`
	require.True(t, LooksLikeLoginOrLandingPage(loginForm))

	landing := "<html><body><h1>Keeping an eye on the charts</h1><a>Try now</a></body></html>"
	require.True(t, LooksLikeLoginOrLandingPage(landing))

	// a large page full of chart markup must never be classified as login
	chart := "<html><body><table>" +
		strings.Repeat("<tr><td>1</td><td>Track</td><td>Artist</td><td>Label</td></tr>", 400) +
		"<caption>Top 100 positions</caption></table></body></html>"
	require.False(t, LooksLikeLoginOrLandingPage(chart))
}

func TestLoginFormAloneIsSufficient(t *testing.T) {
	// login page can exceed the size threshold; the form is a strong signal
	padded := `<input name="email"/><input name="password"/>` + strings.Repeat("<div>padding</div>", 2000)
	require.True(t, LooksLikeLoginOrLandingPage(padded))
}
