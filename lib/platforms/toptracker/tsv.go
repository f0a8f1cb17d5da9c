package toptracker

import (
	"strings"
)

// ParseTSV parses chart rows pasted out of a browser as tab-separated text.
// It is the manual fallback for days the site only renders client-side.
// Expected columns: rank[+movement], title, artists, then optionally label
// and release date. Rows failing the same validity rules as scraped rows
// are dropped.
func ParseTSV(text string) ParseResult {
	var rows []Row
	filtered := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}

		rank, movement, ok := splitRank(strings.TrimSpace(fields[0]))
		if !ok {
			// header line or stray text
			continue
		}

		var title, artistsFull, label, released string
		title = strings.TrimSpace(fields[1])
		if len(fields) > 2 {
			artistsFull = strings.TrimSpace(fields[2])
		}
		if len(fields) > 3 {
			label = strings.TrimSpace(fields[3])
		}
		if len(fields) > 4 {
			released = strings.TrimSpace(fields[4])
		}

		// two-column paste carries only rank and artist
		if artistsFull == "" && len(fields) == 2 {
			artistsFull = title
			title = ""
		}

		primary, full := splitArtists(artistsFull)
		row := Row{
			Position:    rank,
			Movement:    movement,
			TrackTitle:  title,
			ArtistName:  primary,
			ArtistsFull: full,
			LabelName:   label,
			Released:    released,
		}
		if validRow(row) {
			rows = append(rows, row)
		} else {
			filtered++
		}
	}
	return ParseResult{Strategy: "tsv", Rows: rows, Filtered: filtered}
}
