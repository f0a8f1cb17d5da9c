// Package blocklist rejects UI/navigation text that chart parsers sometimes
// pick up as artist or track data ("Sign in", "About us →", footer copyright)
// and classifies whole responses as login/landing pages instead of charts.
package blocklist

import (
	"regexp"
	"strings"
)

var blockedPhrases = map[string]struct{}{}

func init() {
	for _, p := range []string{
		"try now",
		"register now.",
		"register now",
		"sign in",
		"sign up",
		"log in",
		"log out",
		"create account",
		"create an account",
		"about us",
		"about us →",
		"forgot password?",
		"forgot password",
		"login",
		"password",
		"email",
		"remember me",
		"unknown",
		"tops",
		"©",
		"© 2013-2026",
		"all rights reserved",
		"privacy policy",
		"terms of service",
		"terms of use",
		"contact",
		"faq",
		"about",
		"→",
		"home",
		"dashboard",
		"settings",
		"search",
		"see more",
		"load more",
		"next",
		"previous",
		"submit",
		"cancel",
		"close",
		"menu",
		"nav",
		"footer",
		"cookie",
		"accept",
		"decline",
		"bptoptracker",
		"beatport top tracker",
		"keeping an eye",
		"don't miss",
		"historical data",
		"register for free",
		"beatport top 100",
		"140 / deep dubstep / grime",
	} {
		blockedPhrases[p] = struct{}{}
	}
}

var (
	whitespace       = regexp.MustCompile(`\s+`)
	trailingNav      = regexp.MustCompile(`\s*[→↗⟶➔›]\s*.*$`)
	aboutUs          = regexp.MustCompile(`about\s+us\b`)
	rankPlaceholder  = regexp.MustCompile(`^(top|chart|track|artist)\s*\d*$`)
	genreCrumb       = regexp.MustCompile(`^\d+\s*/\s*.+`)
	trackJunkPrefix  = regexp.MustCompile(`^(forgot|password|sign in|login|email|remember)`)
	loginKeywords    = regexp.MustCompile(`\b(sign in|login|password|email\s*:)\b`)
	landingKeywords  = regexp.MustCompile(`\b(try now|register now|about us)\b`)
	chartKeywords    = regexp.MustCompile(`(?i)\b(top 100|chart|position)\b`)
	emailFieldMarker = regexp.MustCompile(`(?i)name="email"`)
	passwordMarker   = regexp.MustCompile(`(?i)name="password"`)
	passwordLabel    = regexp.MustCompile(`password\s*:`)
)

// a real chart page is a large table; anything smaller is suspect
const minChartPageBytes = 15000

const maxNameLength = 80

func normalize(s string) string {
	s = strings.ToLower(s)
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripNav removes a trailing navigation arrow and whatever follows it,
// so "About us →" matches the "about us" phrase.
func stripNav(s string) string {
	return strings.TrimSpace(trailingNav.ReplaceAllString(s, ""))
}

// IsBlockedArtist reports whether a scraped artist name is UI junk.
// Empty and single-character names are junk by definition.
func IsBlockedArtist(name string) bool {
	n := normalize(name)
	if len(n) < 2 {
		return true
	}
	if _, ok := blockedPhrases[n]; ok {
		return true
	}
	if stripped := normalize(stripNav(name)); stripped != "" {
		if _, ok := blockedPhrases[stripped]; ok {
			return true
		}
	}
	if aboutUs.MatchString(n) {
		return true
	}
	if strings.Contains(n, "→") || strings.Contains(n, "©") || len(n) > maxNameLength {
		return true
	}
	if rankPlaceholder.MatchString(n) {
		return true
	}
	if genreCrumb.MatchString(n) {
		return true
	}
	return false
}

// IsBlockedTrack reports whether a track title is UI junk. Unlike artist
// names, an empty title is acceptable (some chart families omit it).
func IsBlockedTrack(title string) bool {
	if title == "" {
		return false
	}
	t := normalize(title)
	if len(t) < 2 {
		return false
	}
	if _, ok := blockedPhrases[t]; ok {
		return true
	}
	if strings.Contains(t, "→") || strings.Contains(t, "©") {
		return true
	}
	return trackJunkPrefix.MatchString(t)
}

// LooksLikeLoginOrLandingPage classifies a whole response body. A login form
// (email + password inputs) alone is a strong enough signal; otherwise the
// page needs login/nav wording combined with being short or chart-free.
// The gated source serves its login page at ~19k bytes, hence the form check.
func LooksLikeLoginOrLandingPage(html string) bool {
	lower := strings.ToLower(html)
	hasLogin := loginKeywords.MatchString(lower)
	hasNav := landingKeywords.MatchString(lower)
	smallOrNoChart := len(html) < minChartPageBytes || !chartKeywords.MatchString(html)
	hasLoginForm := emailFieldMarker.MatchString(html) &&
		(passwordMarker.MatchString(html) || passwordLabel.MatchString(lower))
	return ((hasLogin || hasNav) && smallOrNoChart) || hasLoginForm
}

// Phrases returns the curated junk-phrase set, for store-side cleanup of
// rows that slipped in before a phrase was added.
func Phrases() []string {
	out := make([]string, 0, len(blockedPhrases))
	for p := range blockedPhrases {
		out = append(out, p)
	}
	return out
}
