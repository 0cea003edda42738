package reorder

import (
	"errors"
	"testing"
)

func TestTargetIndex(t *testing.T) {
	tests := []struct {
		name         string
		from, target int
		pos          Position
		want         int
	}{
		{"after, forward", 0, 3, After, 3},
		{"before, forward", 0, 3, Before, 2},
		{"after, backward", 3, 0, After, 1},
		{"before, backward", 3, 0, Before, 0},
		{"before, adjacent", 1, 2, Before, 1},
		{"after, adjacent", 2, 1, After, 2},
	}
	for _, tt := range tests {
		if got := TargetIndex(tt.from, tt.target, tt.pos); got != tt.want {
			t.Errorf("%s: TargetIndex(%d, %d) = %d, want %d",
				tt.name, tt.from, tt.target, got, tt.want)
		}
	}
}

// Moving position 0 to "insert after" position 3 in a 5-item list must
// yield [1 2 3 0 4] by original identity.
func TestTargetIndex_SpliceSemantics(t *testing.T) {
	list := []int{0, 1, 2, 3, 4}
	from, target := 0, 3
	to := TargetIndex(from, target, After)

	moved := list[from]
	list = append(list[:from], list[from+1:]...)
	list = append(list[:to], append([]int{moved}, list[to:]...)...)

	want := []int{1, 2, 3, 0, 4}
	for i := range want {
		if list[i] != want[i] {
			t.Fatalf("result = %v, want %v", list, want)
		}
	}
}

func TestGesture_Flow(t *testing.T) {
	var g Gesture
	g.BeginDrag("a")
	if !g.Active() {
		t.Fatal("gesture should be active")
	}
	g.DragOver("b", After)

	m, ok, err := g.Drop()
	if err != nil || !ok {
		t.Fatalf("Drop() = %v, %v", ok, err)
	}
	if m.ID != "a" || m.TargetID != "b" || m.Pos != After || m.ToEnd {
		t.Errorf("move = %+v", m)
	}
	if g.Active() {
		t.Error("gesture should reset after drop")
	}
}

func TestGesture_DropWithoutDrag(t *testing.T) {
	var g Gesture
	if _, _, err := g.Drop(); !errors.Is(err, ErrNoDrag) {
		t.Errorf("err = %v, want ErrNoDrag", err)
	}
}

func TestGesture_HoverSelfIsNoTarget(t *testing.T) {
	var g Gesture
	g.BeginDrag("a")
	g.DragOver("a", Before)

	_, ok, err := g.Drop()
	if err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if ok {
		t.Error("drop on self should not produce a move")
	}
}

func TestGesture_DragToEnd(t *testing.T) {
	var g Gesture
	g.BeginDrag("a")
	g.DragOver("b", Before)
	g.DragToEnd()

	m, ok, _ := g.Drop()
	if !ok || !m.ToEnd {
		t.Errorf("move = %+v, ok = %v, want ToEnd", m, ok)
	}
}

func TestGesture_Cancel(t *testing.T) {
	var g Gesture
	g.BeginDrag("a")
	g.Cancel()
	if g.Active() {
		t.Error("cancelled gesture should be inactive")
	}
}
