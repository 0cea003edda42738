// Package reorder translates drag gestures into playlist index moves.
// It is decoupled from any rendering technology: callers report the
// gesture (begin, hover with a before/after half, drop) and receive a
// splice target computed purely from index arithmetic.
package reorder

import "errors"

// Position says on which half of the hover target the pointer sits.
type Position int

const (
	Before Position = iota
	After
)

// Move is the outcome of a completed gesture.
type Move struct {
	ID       string
	TargetID string
	Pos      Position
	ToEnd    bool // dropped past the last entry
}

var ErrNoDrag = errors.New("no drag in progress")

// Gesture tracks one in-flight drag. Zero value is ready to use.
type Gesture struct {
	dragging string
	targetID string
	pos      Position
	toEnd    bool
	hovered  bool
}

// BeginDrag starts dragging the given track.
func (g *Gesture) BeginDrag(id string) {
	*g = Gesture{dragging: id}
}

// DragOver records the current hover target and which half of it the
// pointer is on. Hovering the dragged entry itself clears the target.
func (g *Gesture) DragOver(targetID string, pos Position) {
	if g.dragging == "" {
		return
	}
	if targetID == g.dragging {
		g.hovered = false
		g.toEnd = false
		return
	}
	g.targetID = targetID
	g.pos = pos
	g.toEnd = false
	g.hovered = true
}

// DragToEnd records a hover past the last list entry.
func (g *Gesture) DragToEnd() {
	if g.dragging == "" {
		return
	}
	g.toEnd = true
	g.hovered = true
}

// Active reports whether a drag is in progress.
func (g *Gesture) Active() bool {
	return g.dragging != ""
}

// Drop completes the gesture. It returns ErrNoDrag when nothing is
// being dragged and ok=false when the drag never hovered a usable
// target (drop is then a no-op, matching a cancelled gesture).
func (g *Gesture) Drop() (Move, bool, error) {
	if g.dragging == "" {
		return Move{}, false, ErrNoDrag
	}
	m := Move{ID: g.dragging, TargetID: g.targetID, Pos: g.pos, ToEnd: g.toEnd}
	ok := g.hovered
	*g = Gesture{}
	return m, ok, nil
}

// Cancel abandons the gesture.
func (g *Gesture) Cancel() {
	*g = Gesture{}
}

// TargetIndex computes the final insertion index for moving the entry
// at from next to the entry at target, adjusted for the removal shift:
// once the moved entry is spliced out, targets after it slide left one.
func TargetIndex(from, target int, pos Position) int {
	if pos == Before {
		if from < target {
			return target - 1
		}
		return target
	}
	if from < target {
		return target
	}
	return target + 1
}
