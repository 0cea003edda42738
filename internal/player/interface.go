package player

import "time"

// Interface defines the media output contract for dependency injection
// and testing.
type Interface interface {
	// Play binds a new file and starts playback, releasing any
	// previously bound resource first.
	Play(path string) error
	Stop()
	Pause()
	Resume()

	State() State
	Position() time.Duration
	Duration() time.Duration
	SeekTo(pos time.Duration)

	SetVolume(level float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool

	// SetGain sets the preamp stage's linear gain factor (1.0 = unity).
	SetGain(linear float64)

	// OnFinished registers the natural end-of-track callback. It fires
	// from the audio goroutine, never on Stop.
	OnFinished(fn func())
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
