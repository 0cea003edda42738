// Package tags reads track metadata through a single tag-reading
// collaborator. Extraction failures are recovered locally: the result
// falls back to filename parsing and sentinel values, never an error
// the caller has to surface.
package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Tag is the raw result of reading one file.
type Tag struct {
	Title   string
	Artist  string
	Album   string
	Genre   string
	Year    string // 4-digit string, truncated from raw date tags
	Lyrics  string
	Picture []byte
}

// Read extracts metadata from the file at path. Missing or unreadable
// fields come back filled from the filename; only a file-open failure
// is returned as an error.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return FromFilename(filepath.Base(path)), nil
	}

	t := &Tag{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Genre:  m.Genre(),
		Year:   yearString(m),
		Lyrics: m.Lyrics(),
	}
	if pic := m.Picture(); pic != nil {
		t.Picture = pic.Data
	}

	fallback := ParseTrackName(filepath.Base(path))
	if t.Title == "" {
		t.Title = fallback.Title
	}
	if t.Artist == "" && fallback.Artist != "" {
		t.Artist = fallback.Artist
	}
	return t, nil
}

// FromFilename builds a tag from the filename alone.
func FromFilename(name string) *Tag {
	parsed := ParseTrackName(name)
	return &Tag{Title: parsed.Title, Artist: parsed.Artist}
}

// ParsedName is the artist/title pair derived from a filename.
type ParsedName struct {
	Artist string
	Title  string
}

// ParseTrackName splits an "Artist - Title.ext" filename. When the
// pattern does not match, the whole stem becomes the title and the
// artist is left empty for the caller to backfill.
func ParseTrackName(name string) ParsedName {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = name
	}
	parts := strings.SplitN(stem, " - ", 2)
	if len(parts) == 2 {
		artist := strings.TrimSpace(parts[0])
		title := strings.TrimSpace(parts[1])
		if artist != "" && title != "" {
			return ParsedName{Artist: artist, Title: title}
		}
	}
	return ParsedName{Title: strings.TrimSpace(stem)}
}

// rawDateKeys are the date tag shapes seen across formats: ID3v2.4,
// ID3v2.3, vorbis comments and MP4 atoms.
var rawDateKeys = []string{"TDRC", "TYER", "date", "DATE", "\xa9day"}

// yearString derives a 4-digit year, trying the parsed year first and
// then the raw date tags.
func yearString(m tag.Metadata) string {
	if y := m.Year(); y != 0 {
		return fmt.Sprintf("%04d", y)
	}
	raw := m.Raw()
	for _, key := range rawDateKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || len(s) < 4 {
			continue
		}
		if isDigits(s[:4]) {
			return s[:4]
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
