// Package filter derives the displayable subset of a playlist from a
// free-text search term plus genre and year facets. Everything here is
// pure: inputs are never mutated.
package filter

import (
	"sort"
	"strings"

	"github.com/mrenaud/cadence/internal/catalog"
)

// Apply filters tracks in order: free-text substring match over
// title/artist/album/filename, then exact genre, then exact year.
// An empty criterion is a pass-through.
func Apply(tracks []*catalog.Track, term, genre, year string) []*catalog.Track {
	out := make([]*catalog.Track, 0, len(tracks))
	term = strings.ToLower(strings.TrimSpace(term))
	for _, t := range tracks {
		if term != "" && !matchesTerm(t, term) {
			continue
		}
		if genre != "" && !strings.EqualFold(trackGenre(t), genre) {
			continue
		}
		if year != "" && trackYear(t) != year {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesTerm(t *catalog.Track, term string) bool {
	if strings.Contains(strings.ToLower(t.Name), term) {
		return true
	}
	m := t.Metadata
	if m == nil {
		return false
	}
	return strings.Contains(strings.ToLower(m.Title), term) ||
		strings.Contains(strings.ToLower(m.Artist), term) ||
		strings.Contains(strings.ToLower(m.Album), term)
}

func trackGenre(t *catalog.Track) string {
	if t.Metadata == nil {
		return ""
	}
	return t.Metadata.Genre
}

func trackYear(t *catalog.Track) string {
	if t.Metadata == nil {
		return ""
	}
	return t.Metadata.Year
}

// UniqueGenres returns the distinct real genres of the unfiltered list,
// sorted alphabetically, sentinel excluded.
func UniqueGenres(tracks []*catalog.Track) []string {
	seen := map[string]bool{}
	var genres []string
	for _, t := range tracks {
		g := trackGenre(t)
		if !catalog.Known(g, catalog.UnknownGenre) || seen[g] {
			continue
		}
		seen[g] = true
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		return strings.ToLower(genres[i]) < strings.ToLower(genres[j])
	})
	return genres
}

// UniqueYears returns the distinct real years, descending. Years are
// 4-digit strings so lexicographic order equals numeric order.
func UniqueYears(tracks []*catalog.Track) []string {
	seen := map[string]bool{}
	var years []string
	for _, t := range tracks {
		y := trackYear(t)
		if !catalog.Known(y, catalog.UnknownYear) || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}
