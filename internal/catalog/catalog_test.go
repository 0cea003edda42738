package catalog

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	c := New()

	if c.Active() != DefaultPlaylist {
		t.Errorf("Active() = %q, want %q", c.Active(), DefaultPlaylist)
	}
	if len(c.Names()) != 1 {
		t.Errorf("Names() has %d entries, want 1", len(c.Names()))
	}
}

func TestAddFiles(t *testing.T) {
	c := New()

	added, err := c.AddFiles([]string{"/music/a.mp3", "/music/notes.txt", "/music/b.flac"})
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added %d tracks, want 2", len(added))
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	for i, tr := range c.Tracks() {
		if tr.OriginalIndex != i {
			t.Errorf("track %d OriginalIndex = %d", i, tr.OriginalIndex)
		}
		if tr.ID == "" {
			t.Errorf("track %d has no ID", i)
		}
		if !tr.HasHandle() {
			t.Errorf("track %d has no handle", i)
		}
	}
}

func TestAddFiles_AllRejected(t *testing.T) {
	c := New()

	_, err := c.AddFiles([]string{"/music/readme.md", "/music/cover.jpg"})
	if !errors.Is(err, ErrNoAudioFiles) {
		t.Errorf("err = %v, want ErrNoAudioFiles", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestAddFiles_DuplicateNamesCoexist(t *testing.T) {
	c := New()

	added, err := c.AddFiles([]string{"/a/song.mp3", "/b/song.mp3"})
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added %d tracks, want 2", len(added))
	}
	if added[0].ID == added[1].ID {
		t.Error("duplicate filenames share an ID")
	}
	if added[0].Path != added[1].Path {
		t.Errorf("paths differ: %q vs %q", added[0].Path, added[1].Path)
	}
}

func TestRemove_Reindexes(t *testing.T) {
	c := New()
	added, _ := c.AddFiles([]string{"/m/a.mp3", "/m/b.mp3", "/m/c.mp3"})

	if err := c.Remove(added[1].ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	tracks := c.Tracks()
	if len(tracks) != 2 {
		t.Fatalf("Len() = %d, want 2", len(tracks))
	}
	for i, tr := range tracks {
		if tr.OriginalIndex != i {
			t.Errorf("track %d OriginalIndex = %d after removal", i, tr.OriginalIndex)
		}
	}
	if tracks[0].Name != "a.mp3" || tracks[1].Name != "c.mp3" {
		t.Errorf("unexpected order after removal: %q, %q", tracks[0].Name, tracks[1].Name)
	}
}

func TestMove(t *testing.T) {
	c := New()
	c.AddFiles([]string{"/m/0.mp3", "/m/1.mp3", "/m/2.mp3", "/m/3.mp3", "/m/4.mp3"})

	if err := c.Move(0, 3); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	want := []string{"1.mp3", "2.mp3", "3.mp3", "0.mp3", "4.mp3"}
	for i, tr := range c.Tracks() {
		if tr.Name != want[i] {
			t.Errorf("position %d = %q, want %q", i, tr.Name, want[i])
		}
		if tr.OriginalIndex != i {
			t.Errorf("position %d OriginalIndex = %d", i, tr.OriginalIndex)
		}
	}
}

func TestCreatePlaylist(t *testing.T) {
	c := New()

	if err := c.Create("Evening"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Active() != "Evening" {
		t.Errorf("Active() = %q, want Evening", c.Active())
	}

	if err := c.Create("Evening"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate create err = %v, want ErrDuplicateName", err)
	}
	if err := c.Create("   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty create err = %v, want ErrEmptyName", err)
	}
}

func TestDeletePlaylist_LastProtected(t *testing.T) {
	c := New()

	err := c.Delete(DefaultPlaylist)
	if !errors.Is(err, ErrLastPlaylist) {
		t.Errorf("err = %v, want ErrLastPlaylist", err)
	}
	if len(c.Names()) != 1 {
		t.Errorf("playlist map changed: %v", c.Names())
	}
}

func TestDeletePlaylist_ActiveFallsBack(t *testing.T) {
	c := New()
	c.Create("Other")

	if err := c.Delete("Other"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c.Active() != DefaultPlaylist {
		t.Errorf("Active() = %q, want %q", c.Active(), DefaultPlaylist)
	}
}

func TestRestore_EmptySnapshot(t *testing.T) {
	c := New()
	c.Restore(nil, "Gone")

	if c.Active() != DefaultPlaylist {
		t.Errorf("Active() = %q, want %q", c.Active(), DefaultPlaylist)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestMetadataMerge_Monotonic(t *testing.T) {
	m := NewMetadata()
	m.Merge(&Metadata{Title: "Blue in Green", Genre: "Jazz"})

	if m.Title != "Blue in Green" || m.Genre != "Jazz" {
		t.Fatalf("merge did not take fields: %+v", m)
	}
	if m.Artist != UnknownArtist {
		t.Errorf("Artist = %q, want sentinel", m.Artist)
	}

	// A later fetch with missing fields must not regress known ones.
	m.Merge(&Metadata{Artist: "Miles Davis", Genre: UnknownGenre})
	if m.Genre != "Jazz" {
		t.Errorf("Genre regressed to %q", m.Genre)
	}
	if m.Artist != "Miles Davis" {
		t.Errorf("Artist = %q, want Miles Davis", m.Artist)
	}
	if m.Title != "Blue in Green" {
		t.Errorf("Title regressed to %q", m.Title)
	}
}

func TestMetadataIncomplete(t *testing.T) {
	m := NewMetadata()
	if !m.Incomplete() {
		t.Error("sentinel-only metadata should be incomplete")
	}

	m.Merge(&Metadata{Title: "t", Artist: "a", Album: "b", Genre: "g", Year: "2001"})
	if m.Incomplete() {
		t.Errorf("fully merged metadata reported incomplete: %+v", m)
	}
}

func TestTracksReturnsCopy(t *testing.T) {
	c := New()
	if _, err := c.AddFiles([]string{"/m/a.mp3", "/m/b.mp3", "/m/c.mp3"}); err != nil {
		t.Fatal(err)
	}

	before := c.Tracks()
	if err := c.Move(0, 2); err != nil {
		t.Fatalf("Move: %v", err)
	}

	// The slice handed out earlier must not be rewritten by the move.
	if before[0].Path != "/m/a.mp3" || before[1].Path != "/m/b.mp3" || before[2].Path != "/m/c.mp3" {
		t.Errorf("earlier Tracks() slice was mutated: %q %q %q",
			before[0].Path, before[1].Path, before[2].Path)
	}
	after := c.Tracks()
	if after[2].Path != "/m/a.mp3" {
		t.Errorf("move not applied: %q", after[2].Path)
	}
}

func TestSnapshotReturnsCopy(t *testing.T) {
	c := New()
	if _, err := c.AddFiles([]string{"/m/a.mp3", "/m/b.mp3"}); err != nil {
		t.Fatal(err)
	}

	snap := c.Snapshot()
	if err := c.Remove(c.Tracks()[0].ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if got := len(snap[DefaultPlaylist]); got != 2 {
		t.Errorf("snapshot shrank to %d entries after Remove", got)
	}
}
