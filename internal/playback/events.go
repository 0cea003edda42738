package playback

// StateChange is emitted when the controller status changes.
type StateChange struct {
	Previous Status
	Current  Status
}

// TrackChange is emitted when a different track is bound. The rendering
// layer derives the now-playing display purely from these events.
type TrackChange struct {
	PreviousID string
	ID         string
	Index      int // position in the playback order
}

// ModeChange is emitted when repeat or shuffle changes.
type ModeChange struct {
	Repeat   RepeatMode
	Shuffled bool
}

// ErrorEvent is emitted for recoverable playback errors: a track that
// needs re-selection, a decode failure, a queued identity that no
// longer resolves. The controller is always Idle or fully recovered
// after emitting one.
type ErrorEvent struct {
	Op      string
	TrackID string
	Err     error
}
