package catalog

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// DefaultPlaylist is the playlist every catalog starts with and the
// target of legacy store migration.
const DefaultPlaylist = "Default"

var (
	ErrEmptyName     = errors.New("playlist name cannot be empty")
	ErrDuplicateName = errors.New("playlist already exists")
	ErrUnknownList   = errors.New("no such playlist")
	ErrLastPlaylist  = errors.New("cannot delete the last playlist")
	ErrNoAudioFiles  = errors.New("no supported audio files")
	ErrUnknownTrack  = errors.New("no such track")
)

// audioExtensions is the ingestion allow-list.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".m4a":  true,
	".flac": true,
	".aac":  true,
}

// IsAudioFile reports whether the filename passes the extension allow-list.
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// Catalog is the named playlist map. It always contains at least one
// playlist and exactly one of them is active.
type Catalog struct {
	playlists map[string][]*Track
	active    string
}

// New creates a catalog holding a single empty default playlist.
func New() *Catalog {
	return &Catalog{
		playlists: map[string][]*Track{DefaultPlaylist: {}},
		active:    DefaultPlaylist,
	}
}

// Restore replaces the catalog contents with a persisted snapshot.
// An empty snapshot or a missing active name falls back to the default
// playlist so the at-least-one invariant holds.
func (c *Catalog) Restore(playlists map[string][]*Track, active string) {
	if len(playlists) == 0 {
		playlists = map[string][]*Track{DefaultPlaylist: {}}
	}
	c.playlists = playlists
	if _, ok := c.playlists[active]; !ok {
		active = c.firstName()
	}
	c.active = active
	for name := range c.playlists {
		c.reindex(name)
	}
}

// Names returns all playlist names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.playlists))
	for name := range c.playlists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Active returns the active playlist name.
func (c *Catalog) Active() string {
	return c.active
}

// Tracks returns the tracks of the active playlist in original order.
// The slice is a copy; later catalog mutations do not alias it.
func (c *Catalog) Tracks() []*Track {
	return append([]*Track(nil), c.playlists[c.active]...)
}

// Playlist returns the tracks of a named playlist.
func (c *Catalog) Playlist(name string) ([]*Track, bool) {
	tracks, ok := c.playlists[name]
	if !ok {
		return nil, false
	}
	return append([]*Track(nil), tracks...), true
}

// Snapshot returns a copy of the full playlist map for persistence.
func (c *Catalog) Snapshot() map[string][]*Track {
	out := make(map[string][]*Track, len(c.playlists))
	for name, tracks := range c.playlists {
		out[name] = append([]*Track(nil), tracks...)
	}
	return out
}

// Create adds a new empty playlist and makes it active.
func (c *Catalog) Create(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if _, ok := c.playlists[name]; ok {
		return ErrDuplicateName
	}
	c.playlists[name] = []*Track{}
	c.active = name
	return nil
}

// Delete removes a playlist. Deleting the last one is rejected. If the
// active playlist is deleted another one becomes active.
func (c *Catalog) Delete(name string) error {
	if _, ok := c.playlists[name]; !ok {
		return ErrUnknownList
	}
	if len(c.playlists) <= 1 {
		return ErrLastPlaylist
	}
	delete(c.playlists, name)
	if c.active == name {
		c.active = c.firstName()
	}
	return nil
}

// Select makes the named playlist active.
func (c *Catalog) Select(name string) error {
	if _, ok := c.playlists[name]; !ok {
		return ErrUnknownList
	}
	c.active = name
	return nil
}

// AddFiles ingests files into the active playlist. Files failing the
// extension allow-list are silently skipped; if nothing in the batch
// passes, ErrNoAudioFiles is returned. Existing entries are never
// replaced: two files with the same name coexist under distinct IDs.
func (c *Catalog) AddFiles(paths []string) ([]*Track, error) {
	var added []*Track
	tracks := c.playlists[c.active]
	for _, path := range paths {
		name := filepath.Base(path)
		if !IsAudioFile(name) {
			continue
		}
		t := &Track{
			ID:            uuid.NewString(),
			Path:          name,
			Name:          name,
			Handle:        path,
			OriginalIndex: len(tracks),
		}
		tracks = append(tracks, t)
		added = append(added, t)
	}
	if len(added) == 0 {
		return nil, ErrNoAudioFiles
	}
	c.playlists[c.active] = tracks
	return added, nil
}

// Remove deletes the track with the given ID from the active playlist
// and reindexes the remainder.
func (c *Catalog) Remove(id string) error {
	tracks := c.playlists[c.active]
	i := c.IndexOf(id)
	if i < 0 {
		return ErrUnknownTrack
	}
	c.playlists[c.active] = append(tracks[:i], tracks[i+1:]...)
	c.reindex(c.active)
	return nil
}

// Move splices the track at from out of the active playlist and
// reinserts it at to, then reassigns every OriginalIndex.
func (c *Catalog) Move(from, to int) error {
	tracks := c.playlists[c.active]
	if from < 0 || from >= len(tracks) || to < 0 || to >= len(tracks) {
		return ErrUnknownTrack
	}
	if from != to {
		t := tracks[from]
		tracks = append(tracks[:from], tracks[from+1:]...)
		tracks = append(tracks[:to], append([]*Track{t}, tracks[to:]...)...)
		c.playlists[c.active] = tracks
	}
	c.reindex(c.active)
	return nil
}

// IndexOf returns the position of a track in the active playlist, or -1.
func (c *Catalog) IndexOf(id string) int {
	for i, t := range c.playlists[c.active] {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the track with the given ID, searching all playlists.
func (c *Catalog) Find(id string) *Track {
	for _, tracks := range c.playlists {
		for _, t := range tracks {
			if t.ID == id {
				return t
			}
		}
	}
	return nil
}

// Len returns the number of tracks in the active playlist.
func (c *Catalog) Len() int {
	return len(c.playlists[c.active])
}

func (c *Catalog) reindex(name string) {
	for i, t := range c.playlists[name] {
		t.OriginalIndex = i
	}
}

func (c *Catalog) firstName() string {
	names := c.Names()
	if len(names) == 0 {
		c.playlists[DefaultPlaylist] = []*Track{}
		return DefaultPlaylist
	}
	return names[0]
}
