// Package session assembles the player: it owns the playlist catalog,
// the playback controller, the equalizer and the listening history, and
// keeps every mutation persisted.
package session

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize/english"

	"github.com/mrenaud/cadence/internal/catalog"
	"github.com/mrenaud/cadence/internal/config"
	"github.com/mrenaud/cadence/internal/eq"
	"github.com/mrenaud/cadence/internal/filter"
	"github.com/mrenaud/cadence/internal/history"
	"github.com/mrenaud/cadence/internal/notify"
	"github.com/mrenaud/cadence/internal/playback"
	"github.com/mrenaud/cadence/internal/player"
	"github.com/mrenaud/cadence/internal/reorder"
	"github.com/mrenaud/cadence/internal/state"
	"github.com/mrenaud/cadence/internal/tags"
	"github.com/mrenaud/cadence/internal/visual"
)

// sampleSource is satisfied by outputs that expose a live sample tap.
type sampleSource interface {
	SetProcessor(fn func(samples [][2]float64, sampleRate int))
}

// Session wires the catalog, playback controller, equalizer, history
// and persistence into one object. Catalog access is serialized here;
// the controller carries its own locking.
type Session struct {
	mu sync.Mutex

	cfg      *config.Config
	store    *state.Manager
	out      player.Interface
	notifier notify.Notifier

	catalog    *catalog.Catalog
	controller *playback.Controller
	tracker    *history.Tracker
	equalizer  *eq.Equalizer
	analyzer   *visual.Analyzer
	gesture    *reorder.Gesture

	levelBeforeMute float64
	notifID         uint32

	sub  *playback.Subscription
	done chan struct{}
}

// New restores persisted state and assembles a ready session. The
// notifier may be nil to disable desktop notifications.
func New(cfg *config.Config, store *state.Manager, out player.Interface, notifier notify.Notifier) *Session {
	s := &Session{
		cfg:      cfg,
		store:    store,
		out:      out,
		notifier: notifier,
		catalog:  catalog.New(),
		gesture:  &reorder.Gesture{},
		done:     make(chan struct{}),
	}

	s.catalog.Restore(store.LoadPlaylists())

	s.tracker = history.New(cfg.History.RecentLimit)
	s.tracker.Restore(store.GetHistory())
	s.tracker.OnChange(func() {
		store.SaveHistory(s.tracker.Recent(), s.tracker.Counts())
	})

	s.equalizer = eq.New()
	eqSettings := store.GetEq()
	s.equalizer.Restore(eqSettings.PresetName, eqSettings.Enabled, eqSettings.Preamp, eqSettings.Bands)
	s.equalizer.OnChange(s.eqChanged)
	out.SetGain(s.equalizer.PreampLinear())

	vol := store.GetVolume()
	s.levelBeforeMute = vol.LevelBeforeMute
	out.SetVolume(vol.Level)

	s.controller = playback.New(out, s.tracker, readMetadata)
	s.controller.RestoreModes(store.GetShuffle(), playback.ParseRepeatMode(store.GetRepeatMode()))
	s.controller.OnModeChange(func(repeat playback.RepeatMode, shuffled bool) {
		store.SaveShuffle(shuffled)
		store.SaveRepeatMode(repeat.String())
	})
	s.controller.SetTracks(s.catalog.Tracks(), true)

	s.analyzer = visual.NewAnalyzer(cfg.Analyzer.WindowSize)
	if src, ok := out.(sampleSource); ok {
		src.SetProcessor(s.analyzer.Process)
	}

	s.sub = s.controller.Subscribe()
	go s.eventLoop()

	return s
}

// Controller exposes the playback controller, e.g. for the MPRIS
// adapter.
func (s *Session) Controller() *playback.Controller {
	return s.controller
}

// Analyzer exposes the level-meter analyzer.
func (s *Session) Analyzer() *visual.Analyzer {
	return s.analyzer
}

// Close shuts the session down, flushing pending saves.
func (s *Session) Close() {
	close(s.done)
	s.controller.Close()
	s.store.Flush()
}

// readMetadata adapts tag extraction for the controller's lazy fetch.
func readMetadata(handle, name string) (*catalog.Metadata, error) {
	t, err := tags.Read(handle)
	if err != nil {
		return nil, err
	}
	return &catalog.Metadata{
		Title:  t.Title,
		Artist: t.Artist,
		Album:  t.Album,
		Genre:  t.Genre,
		Year:   t.Year,
		Lyrics: t.Lyrics,
		Art:    t.Picture,
	}, nil
}

// eventLoop forwards track changes to the desktop notifier.
func (s *Session) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case e := <-s.sub.TrackChanged:
			s.analyzer.Reset()
			s.notifyTrack(e)
		case <-s.sub.StateChanged:
		case <-s.sub.ModeChanged:
		case <-s.sub.Error:
		}
	}
}

func (s *Session) notifyTrack(e playback.TrackChange) {
	if s.notifier == nil || e.ID == "" {
		return
	}
	s.mu.Lock()
	track := s.catalog.Find(e.ID)
	s.mu.Unlock()
	if track == nil {
		return
	}
	n := notify.NowPlaying(track.DisplayTitle(), track.DisplayArtist(), "", s.notifID)
	if id, err := s.notifier.Notify(n); err == nil && id != 0 {
		s.notifID = id
	}
}

func (s *Session) eqChanged() {
	s.store.SaveEq(state.EqSettings{
		PresetName: s.equalizer.Preset(),
		Enabled:    s.equalizer.Enabled(),
		Preamp:     s.equalizer.Preamp(),
		Bands:      bandsSlice(s.equalizer.Bands()),
	})
	s.out.SetGain(s.equalizer.PreampLinear())
}

func bandsSlice(b [eq.NumBands]float64) []float64 {
	return append([]float64(nil), b[:]...)
}

func (s *Session) persistPlaylists() {
	s.store.SavePlaylists(s.catalog.Snapshot())
	s.store.SaveActivePlaylist(s.catalog.Active())
}

// AddFiles ingests the given paths into the active playlist, skipping
// non-audio files. When the playlist was empty, playback starts on the
// first added track.
func (s *Session) AddFiles(paths []string) ([]*catalog.Track, error) {
	s.mu.Lock()
	wasEmpty := s.catalog.Len() == 0
	added, err := s.catalog.AddFiles(paths)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.persistPlaylists()
	tracks := s.catalog.Tracks()
	s.mu.Unlock()

	s.controller.SetTracks(tracks, false)

	if s.notifier != nil {
		n := notify.Notification{
			Title:   "Tracks added",
			Body:    fmt.Sprintf("Added %s", english.Plural(len(added), "track", "")),
			Timeout: -1,
			Urgency: notify.UrgencyLow,
		}
		_, _ = s.notifier.Notify(n)
	}

	if wasEmpty {
		_ = s.controller.PlayIndex(0)
	}
	return added, nil
}

// RemoveTrack removes a track from the active playlist.
func (s *Session) RemoveTrack(id string) error {
	s.mu.Lock()
	if err := s.catalog.Remove(id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.persistPlaylists()
	tracks := s.catalog.Tracks()
	s.mu.Unlock()

	s.controller.SetTracks(tracks, false)
	return nil
}

// Tracks returns the active playlist in curated order.
func (s *Session) Tracks() []*catalog.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Tracks()
}

// FilteredTracks applies the search term and facet filters to the
// active playlist.
func (s *Session) FilteredTracks(term, genre, year string) []*catalog.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Apply(s.catalog.Tracks(), term, genre, year)
}

// Genres returns the facet values present in the active playlist.
func (s *Session) Genres() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.UniqueGenres(s.catalog.Tracks())
}

// Years returns the facet values present in the active playlist.
func (s *Session) Years() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.UniqueYears(s.catalog.Tracks())
}

// Playlists returns all playlist names, sorted.
func (s *Session) Playlists() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Names()
}

// ActivePlaylist returns the selected playlist name.
func (s *Session) ActivePlaylist() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Active()
}

// CreatePlaylist creates an empty playlist and makes it active,
// resetting playback like any other playlist switch.
func (s *Session) CreatePlaylist(name string) error {
	s.mu.Lock()
	if err := s.catalog.Create(name); err != nil {
		s.mu.Unlock()
		return err
	}
	s.persistPlaylists()
	tracks := s.catalog.Tracks()
	s.mu.Unlock()

	s.controller.SetTracks(tracks, true)
	return nil
}

// DeletePlaylist removes a playlist; deleting the active one selects
// another, deleting the last is rejected.
func (s *Session) DeletePlaylist(name string) error {
	s.mu.Lock()
	wasActive := s.catalog.Active() == name
	if err := s.catalog.Delete(name); err != nil {
		s.mu.Unlock()
		return err
	}
	s.persistPlaylists()
	tracks := s.catalog.Tracks()
	s.mu.Unlock()

	if wasActive {
		s.controller.SetTracks(tracks, true)
	}
	return nil
}

// SelectPlaylist switches the active playlist, resetting playback.
func (s *Session) SelectPlaylist(name string) error {
	s.mu.Lock()
	if name == s.catalog.Active() {
		s.mu.Unlock()
		return nil
	}
	if err := s.catalog.Select(name); err != nil {
		s.mu.Unlock()
		return err
	}
	s.persistPlaylists()
	tracks := s.catalog.Tracks()
	s.mu.Unlock()

	s.controller.SetTracks(tracks, true)
	return nil
}

// BeginDrag starts a reorder gesture on a track.
func (s *Session) BeginDrag(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gesture.BeginDrag(id)
}

// DragOver updates the gesture's insertion marker.
func (s *Session) DragOver(targetID string, pos reorder.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gesture.DragOver(targetID, pos)
}

// DragToEnd marks the end of the playlist as the drop target.
func (s *Session) DragToEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gesture.DragToEnd()
}

// CancelDrag abandons the gesture without moving anything.
func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gesture.Cancel()
}

// Drop completes the reorder gesture, moving the dragged track to the
// marked position in the active playlist.
func (s *Session) Drop() error {
	s.mu.Lock()
	move, ok, err := s.gesture.Drop()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !ok {
		s.mu.Unlock()
		return nil
	}

	from := s.catalog.IndexOf(move.ID)
	if from < 0 {
		s.mu.Unlock()
		return catalog.ErrUnknownTrack
	}
	var to int
	if move.ToEnd {
		to = s.catalog.Len() - 1
	} else {
		target := s.catalog.IndexOf(move.TargetID)
		if target < 0 {
			s.mu.Unlock()
			return catalog.ErrUnknownTrack
		}
		to = reorder.TargetIndex(from, target, move.Pos)
	}
	if err := s.catalog.Move(from, to); err != nil {
		s.mu.Unlock()
		return err
	}
	s.persistPlaylists()
	tracks := s.catalog.Tracks()
	s.mu.Unlock()

	s.controller.ReorderApplied(tracks)
	return nil
}

// SetVolume sets the output level, clamped to [0,1], and persists it.
func (s *Session) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	s.mu.Lock()
	s.out.SetVolume(level)
	s.store.SaveVolume(state.VolumeSettings{Level: level, LevelBeforeMute: s.levelBeforeMute})
	s.mu.Unlock()
}

// ToggleMute drops the level to zero, remembering the previous level,
// or restores it.
func (s *Session) ToggleMute() {
	s.mu.Lock()
	level := s.out.Volume()
	if level > 0 {
		s.levelBeforeMute = level
		s.out.SetVolume(0)
		level = 0
	} else {
		level = s.levelBeforeMute
		if level <= 0 {
			level = 1.0
		}
		s.out.SetVolume(level)
	}
	s.store.SaveVolume(state.VolumeSettings{Level: level, LevelBeforeMute: s.levelBeforeMute})
	s.mu.Unlock()
}

// Volume returns the current output level.
func (s *Session) Volume() float64 {
	return s.out.Volume()
}

// Equalizer exposes the equalizer; its mutations persist automatically.
func (s *Session) Equalizer() *eq.Equalizer {
	return s.equalizer
}

// RecentTracks resolves the recently-played identities against the
// catalog, skipping entries whose tracks are gone.
func (s *Session) RecentTracks() []*catalog.Track {
	ids := s.controller.Recent()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*catalog.Track, 0, len(ids))
	for _, id := range ids {
		if t := s.catalog.Find(id); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// TopPlayed resolves the most-played tallies against the catalog.
func (s *Session) TopPlayed() []PlayedTrack {
	top := s.controller.Top(s.cfg.History.TopCount)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PlayedTrack, 0, len(top))
	for _, pc := range top {
		if t := s.catalog.Find(pc.ID); t != nil {
			out = append(out, PlayedTrack{Track: t, Count: pc.Count})
		}
	}
	return out
}

// PlayedTrack pairs a resolved track with its play count.
type PlayedTrack struct {
	Track *catalog.Track
	Count int
}
