// Package catalog owns track records and the named playlist map.
package catalog

// Sentinel values used when real metadata is unavailable.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
	UnknownGenre  = "Unknown Genre"
	UnknownYear   = "Unknown Year"
)

// Track represents a single entry in a playlist.
type Track struct {
	ID            string // synthetic identity, assigned at ingestion
	Path          string // filename-derived key, kept for legacy stores
	Name          string // original filename
	Handle        string // playable file location; empty after a restore
	OriginalIndex int
	Metadata      *Metadata // nil until first fetched
}

// Metadata holds the known tag fields of a track.
// All string fields are backfilled with sentinels so callers can assume
// they are always present.
type Metadata struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   string
	Lyrics string
	Art    []byte // album art payload, never persisted
}

// NewMetadata returns metadata with every field set to its sentinel.
func NewMetadata() *Metadata {
	return &Metadata{
		Title:  UnknownTitle,
		Artist: UnknownArtist,
		Album:  UnknownAlbum,
		Genre:  UnknownGenre,
		Year:   UnknownYear,
	}
}

// Backfill replaces empty fields with their sentinels.
func (m *Metadata) Backfill() {
	if m.Title == "" {
		m.Title = UnknownTitle
	}
	if m.Artist == "" {
		m.Artist = UnknownArtist
	}
	if m.Album == "" {
		m.Album = UnknownAlbum
	}
	if m.Genre == "" {
		m.Genre = UnknownGenre
	}
	if m.Year == "" {
		m.Year = UnknownYear
	}
}

// Merge folds incoming metadata into m, field by field. A field already
// known (non-sentinel) is never regressed to a sentinel or emptied, so
// metadata learned once stays learned.
func (m *Metadata) Merge(in *Metadata) {
	if in == nil {
		m.Backfill()
		return
	}
	m.Title = mergeField(m.Title, in.Title, UnknownTitle)
	m.Artist = mergeField(m.Artist, in.Artist, UnknownArtist)
	m.Album = mergeField(m.Album, in.Album, UnknownAlbum)
	m.Genre = mergeField(m.Genre, in.Genre, UnknownGenre)
	m.Year = mergeField(m.Year, in.Year, UnknownYear)
	if in.Lyrics != "" {
		m.Lyrics = in.Lyrics
	}
	if len(in.Art) > 0 {
		m.Art = in.Art
	}
}

func mergeField(old, in, sentinel string) string {
	if in != "" && in != sentinel {
		return in
	}
	if old != "" {
		return old
	}
	return sentinel
}

// Known reports whether the field carries real (non-sentinel) data.
func Known(field, sentinel string) bool {
	return field != "" && field != sentinel
}

// Incomplete reports whether any metadata field still holds a sentinel,
// meaning a tag fetch could improve the record.
func (m *Metadata) Incomplete() bool {
	return !Known(m.Title, UnknownTitle) ||
		!Known(m.Artist, UnknownArtist) ||
		!Known(m.Album, UnknownAlbum) ||
		!Known(m.Genre, UnknownGenre) ||
		!Known(m.Year, UnknownYear)
}

// DisplayTitle returns the best title available for the track.
func (t *Track) DisplayTitle() string {
	if t.Metadata != nil && Known(t.Metadata.Title, UnknownTitle) {
		return t.Metadata.Title
	}
	return t.Name
}

// DisplayArtist returns the best artist available for the track.
func (t *Track) DisplayArtist() string {
	if t.Metadata != nil && Known(t.Metadata.Artist, UnknownArtist) {
		return t.Metadata.Artist
	}
	return UnknownArtist
}

// HasHandle reports whether the track can be bound to the player.
func (t *Track) HasHandle() bool {
	return t.Handle != ""
}
