package session

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mrenaud/cadence/internal/catalog"
	"github.com/mrenaud/cadence/internal/config"
	"github.com/mrenaud/cadence/internal/notify"
	"github.com/mrenaud/cadence/internal/playback"
	"github.com/mrenaud/cadence/internal/player"
	"github.com/mrenaud/cadence/internal/reorder"
	"github.com/mrenaud/cadence/internal/state"
)

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []notify.Notification
	next  uint32
	calls int
}

func (f *fakeNotifier) Notify(n notify.Notification) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	f.calls++
	f.next++
	return f.next, nil
}

func (f *fakeNotifier) Close(_ uint32) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Analyzer: config.AnalyzerConfig{WindowSize: 2048},
		History:  config.HistoryConfig{RecentLimit: 25, TopCount: 10},
	}
}

func openSession(t *testing.T, dbPath string) (*Session, *player.Mock, *state.Manager) {
	t.Helper()
	store, err := state.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	mock := player.NewMock()
	s := New(testConfig(), store, mock, nil)
	return s, mock, store
}

func audioPaths(names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join("/music", n)
	}
	return out
}

func TestAddFilesAutoPlaysFirstBatch(t *testing.T) {
	s, mock, store := openSession(t, filepath.Join(t.TempDir(), "s.db"))
	defer store.Close()
	defer s.Close()

	added, err := s.AddFiles(audioPaths("a.mp3", "b.flac", "notes.txt"))
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added %d tracks, want 2", len(added))
	}
	if got := s.Controller().Status(); got != playback.StatusPlaying {
		t.Errorf("status = %v, want %v", got, playback.StatusPlaying)
	}
	if len(mock.PlayCalls) != 1 {
		t.Errorf("PlayCalls = %v, want one", mock.PlayCalls)
	}

	// A second batch must not restart playback.
	if _, err := s.AddFiles(audioPaths("c.wav")); err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if len(mock.PlayCalls) != 1 {
		t.Errorf("PlayCalls = %v after second batch, want one", mock.PlayCalls)
	}
}

func TestAddFilesRejectsBatchWithoutAudio(t *testing.T) {
	s, _, store := openSession(t, filepath.Join(t.TempDir(), "s.db"))
	defer store.Close()
	defer s.Close()

	if _, err := s.AddFiles(audioPaths("readme.md")); err != catalog.ErrNoAudioFiles {
		t.Fatalf("err = %v, want ErrNoAudioFiles", err)
	}
}

func TestPlaylistsSurviveRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "s.db")

	s, _, store := openSession(t, dbPath)
	if _, err := s.AddFiles(audioPaths("a.mp3", "b.mp3")); err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if err := s.CreatePlaylist("Workout"); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if err := s.SelectPlaylist("Workout"); err != nil {
		t.Fatalf("SelectPlaylist: %v", err)
	}
	s.Close()
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	s2, _, store2 := openSession(t, dbPath)
	defer store2.Close()
	defer s2.Close()

	names := s2.Playlists()
	if len(names) != 2 {
		t.Fatalf("playlists = %v, want 2", names)
	}
	if got := s2.ActivePlaylist(); got != "Workout" {
		t.Errorf("active = %q, want %q", got, "Workout")
	}
	def, ok := func() ([]*catalog.Track, bool) {
		if err := s2.SelectPlaylist(catalog.DefaultPlaylist); err != nil {
			return nil, false
		}
		return s2.Tracks(), true
	}()
	if !ok || len(def) != 2 {
		t.Errorf("default playlist tracks = %d, want 2", len(def))
	}
	// Restored tracks lost their file handles and need re-selection.
	if def[0].HasHandle() {
		t.Error("restored track still has a live handle")
	}
}

func TestSelectPlaylistResetsPlayback(t *testing.T) {
	s, _, store := openSession(t, filepath.Join(t.TempDir(), "s.db"))
	defer store.Close()
	defer s.Close()

	if _, err := s.AddFiles(audioPaths("a.mp3")); err != nil {
		t.Fatal(err)
	}
	if err := s.CreatePlaylist("Other"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectPlaylist("Other"); err != nil {
		t.Fatalf("SelectPlaylist: %v", err)
	}

	if got := s.Controller().Status(); got != playback.StatusIdle {
		t.Errorf("status = %v, want %v", got, playback.StatusIdle)
	}
	if got := len(s.Tracks()); got != 0 {
		t.Errorf("tracks = %d, want 0", got)
	}
}

func TestCreatePlaylistActivatesAndResetsPlayback(t *testing.T) {
	s, mock, store := openSession(t, filepath.Join(t.TempDir(), "s.db"))
	defer store.Close()
	defer s.Close()

	if _, err := s.AddFiles(audioPaths("a.mp3")); err != nil {
		t.Fatal(err)
	}
	if got := s.Controller().Status(); got != playback.StatusPlaying {
		t.Fatalf("status = %v, want %v", got, playback.StatusPlaying)
	}

	if err := s.CreatePlaylist("Fresh"); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if got := s.ActivePlaylist(); got != "Fresh" {
		t.Errorf("active = %q, want %q", got, "Fresh")
	}
	if got := s.Controller().Status(); got != playback.StatusIdle {
		t.Errorf("status = %v, want %v", got, playback.StatusIdle)
	}
	if got := mock.State(); got != player.Stopped {
		t.Errorf("output state = %v, want %v", got, player.Stopped)
	}
	if got := len(s.Tracks()); got != 0 {
		t.Errorf("tracks = %d, want 0", got)
	}
}

func TestDeleteLastPlaylistRejected(t *testing.T) {
	s, _, store := openSession(t, filepath.Join(t.TempDir(), "s.db"))
	defer store.Close()
	defer s.Close()

	if err := s.DeletePlaylist(catalog.DefaultPlaylist); err != catalog.ErrLastPlaylist {
		t.Fatalf("err = %v, want ErrLastPlaylist", err)
	}
}

func TestDropReordersActivePlaylist(t *testing.T) {
	s, _, store := openSession(t, filepath.Join(t.TempDir(), "s.db"))
	defer store.Close()
	defer s.Close()

	if _, err := s.AddFiles(audioPaths("a.mp3", "b.mp3", "c.mp3", "d.mp3")); err != nil {
		t.Fatal(err)
	}
	tracks := s.Tracks()

	s.BeginDrag(tracks[0].ID)
	s.DragOver(tracks[2].ID, reorder.After)
	if err := s.Drop(); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	got := s.Tracks()
	wantOrder := []string{tracks[1].ID, tracks[2].ID, tracks[0].ID, tracks[3].ID}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("order[%d] = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestDropWithoutDragFails(t *testing.T) {
	s, _, store := openSession(t, filepath.Join(t.TempDir(), "s.db"))
	defer store.Close()
	defer s.Close()

	if err := s.Drop(); err != reorder.ErrNoDrag {
		t.Fatalf("err = %v, want ErrNoDrag", err)
	}
}

func TestToggleMuteRestoresLevel(t *testing.T) {
	s, mock, store := openSession(t, filepath.Join(t.TempDir(), "s.db"))
	defer store.Close()
	defer s.Close()

	s.SetVolume(0.6)
	s.ToggleMute()
	if got := mock.Volume(); got != 0 {
		t.Errorf("volume after mute = %v, want 0", got)
	}
	s.ToggleMute()
	if got := mock.Volume(); got != 0.6 {
		t.Errorf("volume after unmute = %v, want 0.6", got)
	}
}

func TestVolumeSurvivesRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "s.db")

	s, _, store := openSession(t, dbPath)
	s.SetVolume(0.3)
	s.Close()
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	s2, mock, store2 := openSession(t, dbPath)
	defer store2.Close()
	defer s2.Close()

	if got := mock.Volume(); got != 0.3 {
		t.Errorf("restored volume = %v, want 0.3", got)
	}
}

func TestNowPlayingNotification(t *testing.T) {
	store, err := state.OpenPath(filepath.Join(t.TempDir(), "s.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	fn := &fakeNotifier{}
	s := New(testConfig(), store, player.NewMock(), fn)
	defer s.Close()

	if _, err := s.AddFiles(audioPaths("Artist - Song.mp3")); err != nil {
		t.Fatal(err)
	}

	// The track-change notification is delivered asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		fn.mu.Lock()
		n := len(fn.sent)
		fn.mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d notifications, want 2", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	fn.mu.Lock()
	defer fn.mu.Unlock()
	if fn.sent[0].Title != "Tracks added" {
		t.Errorf("first notification = %+v", fn.sent[0])
	}
}

func TestHistoryResolvesTracks(t *testing.T) {
	s, _, store := openSession(t, filepath.Join(t.TempDir(), "s.db"))
	defer store.Close()
	defer s.Close()

	if _, err := s.AddFiles(audioPaths("a.mp3", "b.mp3")); err != nil {
		t.Fatal(err)
	}
	tracks := s.Tracks()
	if err := s.Controller().PlayID(tracks[1].ID); err != nil {
		t.Fatal(err)
	}

	recent := s.RecentTracks()
	if len(recent) != 2 || recent[0].ID != tracks[1].ID {
		t.Errorf("recent = %v", recent)
	}
	top := s.TopPlayed()
	if len(top) != 2 {
		t.Errorf("top = %v", top)
	}
}
