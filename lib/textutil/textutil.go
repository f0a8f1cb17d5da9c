package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName produces the canonical matching key for artist and label
// names: trimmed, lowercased, inner whitespace collapsed to single spaces.
// The same raw name scraped from two sources must normalize identically.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return name
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a raw name into a url-safe slug ("Måns & Co" -> "m-ns-co").
func Slugify(name string) string {
	s := NormalizeName(name)
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SyntheticID derives the deterministic fallback artist id used when no
// platform-native id could be resolved, namespaced to the source platform.
func SyntheticID(platform, rawName string) string {
	return platform + ":" + Slugify(rawName)
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
