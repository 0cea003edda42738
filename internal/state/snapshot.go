package state

import (
	"github.com/google/uuid"

	"github.com/mrenaud/cadence/internal/catalog"
	"github.com/mrenaud/cadence/internal/tags"
)

// storedTrack is the serializable form of a track record. File handles
// and the album-art payload are stripped by construction; the metadata
// field names match the original single-playlist store so legacy
// documents parse with the same types.
type storedTrack struct {
	ID            string          `json:"id,omitempty"`
	Path          string          `json:"path"`
	Name          string          `json:"name"`
	OriginalIndex int             `json:"originalIndex"`
	Metadata      *storedMetadata `json:"metadata"`
}

type storedMetadata struct {
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Album  string  `json:"album"`
	Genre  string  `json:"genre"`
	Year   string  `json:"year"`
	Lyrics *string `json:"lyrics"`
}

// SavePlaylists snapshots the whole playlist map. The write is
// debounced; call Flush (or Close) to force it out.
func (m *Manager) SavePlaylists(playlists map[string][]*catalog.Track) {
	stored := make(map[string][]storedTrack, len(playlists))
	for name, tracks := range playlists {
		list := make([]storedTrack, len(tracks))
		for i, t := range tracks {
			list[i] = toStored(t)
		}
		stored[name] = list
	}
	m.putSoon(keyPlaylists, stored)
}

// SaveActivePlaylist persists the last active playlist name.
func (m *Manager) SaveActivePlaylist(name string) {
	if err := m.put(keyActivePlaylist, name); err != nil {
		logPut(keyActivePlaylist, err)
	}
}

// LoadPlaylists restores the playlist map and the active playlist name.
// When the multi-playlist document is entirely absent, a legacy
// single-playlist document is migrated into the default playlist. Any
// failure yields an empty default catalog, never an error.
func (m *Manager) LoadPlaylists() (map[string][]*catalog.Track, string) {
	var stored map[string][]storedTrack
	if m.get(keyPlaylists, &stored) && stored != nil {
		playlists := make(map[string][]*catalog.Track, len(stored))
		for name, list := range stored {
			playlists[name] = fromStored(list)
		}
		active := catalog.DefaultPlaylist
		var name string
		if m.get(keyActivePlaylist, &name) && name != "" {
			active = name
		}
		return playlists, active
	}

	// Multi key absent: attempt the legacy single-playlist format.
	if m.has(keyLegacyPlaylist) {
		var legacy []storedTrack
		if m.get(keyLegacyPlaylist, &legacy) && len(legacy) > 0 {
			playlists := map[string][]*catalog.Track{
				catalog.DefaultPlaylist: fromStored(legacy),
			}
			return playlists, catalog.DefaultPlaylist
		}
	}

	return map[string][]*catalog.Track{catalog.DefaultPlaylist: {}}, catalog.DefaultPlaylist
}

func toStored(t *catalog.Track) storedTrack {
	st := storedTrack{
		ID:            t.ID,
		Path:          t.Path,
		Name:          t.Name,
		OriginalIndex: t.OriginalIndex,
	}
	if t.Metadata != nil {
		st.Metadata = &storedMetadata{
			Title:  t.Metadata.Title,
			Artist: t.Metadata.Artist,
			Album:  t.Metadata.Album,
			Genre:  t.Metadata.Genre,
			Year:   t.Metadata.Year,
		}
		if t.Metadata.Lyrics != "" {
			lyrics := t.Metadata.Lyrics
			st.Metadata.Lyrics = &lyrics
		}
	}
	return st
}

func fromStored(list []storedTrack) []*catalog.Track {
	tracks := make([]*catalog.Track, 0, len(list))
	for i, st := range list {
		t := &catalog.Track{
			ID:            st.ID,
			Path:          st.Path,
			Name:          st.Name,
			OriginalIndex: i,
		}
		// Legacy documents predate synthetic IDs.
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.Name == "" {
			t.Name = t.Path
		}
		var meta *catalog.Metadata
		if st.Metadata != nil {
			meta = &catalog.Metadata{
				Title:  st.Metadata.Title,
				Artist: st.Metadata.Artist,
				Album:  st.Metadata.Album,
				Genre:  st.Metadata.Genre,
				Year:   st.Metadata.Year,
			}
			if st.Metadata.Lyrics != nil {
				meta.Lyrics = *st.Metadata.Lyrics
			}
		} else {
			// Documents predating per-track metadata: derive title and
			// artist from the filename.
			parsed := tags.ParseTrackName(t.Name)
			meta = &catalog.Metadata{Title: parsed.Title, Artist: parsed.Artist}
		}
		meta.Backfill()
		t.Metadata = meta
		tracks = append(tracks, t)
	}
	return tracks
}
