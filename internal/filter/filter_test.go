package filter

import (
	"testing"

	"github.com/mrenaud/cadence/internal/catalog"
)

func track(name, title, artist, album, genre, year string) *catalog.Track {
	return &catalog.Track{
		Name: name,
		Metadata: &catalog.Metadata{
			Title: title, Artist: artist, Album: album,
			Genre: genre, Year: year,
		},
	}
}

func library() []*catalog.Track {
	return []*catalog.Track{
		track("a.mp3", "Thunderstruck", "AC/DC", "The Razors Edge", "Rock", "1999"),
		track("b.mp3", "So What", "Miles Davis", "Kind of Blue", "Jazz", "1999"),
		track("c.mp3", "Back in Black", "AC/DC", "Back in Black", "Rock", "2001"),
	}
}

func TestApply_TermMatchesAnyField(t *testing.T) {
	got := Apply(library(), "miles", "", "")
	if len(got) != 1 || got[0].Metadata.Artist != "Miles Davis" {
		t.Fatalf("term search got %d tracks", len(got))
	}

	got = Apply(library(), "BLACK", "", "")
	if len(got) != 1 || got[0].Metadata.Title != "Back in Black" {
		t.Fatalf("case-insensitive search got %d tracks", len(got))
	}

	got = Apply(library(), "a.mp3", "", "")
	if len(got) != 1 {
		t.Fatalf("filename search got %d tracks", len(got))
	}
}

func TestApply_FacetComposition(t *testing.T) {
	got := Apply(library(), "", "Rock", "2001")
	if len(got) != 1 {
		t.Fatalf("got %d tracks, want 1", len(got))
	}
	if got[0].Metadata.Title != "Back in Black" {
		t.Errorf("got %q", got[0].Metadata.Title)
	}
}

func TestApply_EmptyCriteriaPassThrough(t *testing.T) {
	got := Apply(library(), "", "", "")
	if len(got) != 3 {
		t.Errorf("got %d tracks, want all 3", len(got))
	}
}

func TestApply_GenreCaseInsensitive(t *testing.T) {
	got := Apply(library(), "", "rock", "")
	if len(got) != 2 {
		t.Errorf("got %d tracks, want 2", len(got))
	}
}

func TestApply_NilMetadata(t *testing.T) {
	tracks := []*catalog.Track{{Name: "loose.mp3"}}

	if got := Apply(tracks, "loose", "", ""); len(got) != 1 {
		t.Errorf("filename match with nil metadata got %d", len(got))
	}
	if got := Apply(tracks, "", "Rock", ""); len(got) != 0 {
		t.Errorf("genre facet with nil metadata got %d", len(got))
	}
}

func TestUniqueGenres(t *testing.T) {
	tracks := append(library(),
		track("d.mp3", "x", "y", "z", catalog.UnknownGenre, "1980"),
		track("e.mp3", "x", "y", "z", "acid jazz", "1980"),
	)

	got := UniqueGenres(tracks)
	want := []string{"acid jazz", "Jazz", "Rock"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("genre %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUniqueYears_Descending(t *testing.T) {
	got := UniqueYears(library())
	want := []string{"2001", "1999"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}
