package player

import "time"

// Mock is a test double for the media output.
type Mock struct {
	state       State
	position    time.Duration
	duration    time.Duration
	volumeLevel float64
	muted       bool
	gainLinear  float64

	PlayErr   error
	PlayCalls []string
	StopCalls int
	SeekCalls []time.Duration

	onFinished func()
}

// NewMock creates a stopped mock player.
func NewMock() *Mock {
	return &Mock{volumeLevel: 1.0, gainLinear: 1.0}
}

func (m *Mock) Play(path string) error {
	m.PlayCalls = append(m.PlayCalls, path)
	if m.PlayErr != nil {
		return m.PlayErr
	}
	m.state = Playing
	m.position = 0
	return nil
}

func (m *Mock) Stop() {
	m.StopCalls++
	m.state = Stopped
	m.position = 0
}

func (m *Mock) Pause() {
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Resume() {
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) State() State            { return m.state }
func (m *Mock) Position() time.Duration { return m.position }
func (m *Mock) Duration() time.Duration { return m.duration }

func (m *Mock) SeekTo(pos time.Duration) {
	m.SeekCalls = append(m.SeekCalls, pos)
	m.position = pos
}

func (m *Mock) SetVolume(level float64) { m.volumeLevel = level }
func (m *Mock) Volume() float64         { return m.volumeLevel }
func (m *Mock) SetMuted(muted bool)     { m.muted = muted }
func (m *Mock) Muted() bool             { return m.muted }
func (m *Mock) SetGain(linear float64)  { m.gainLinear = linear }
func (m *Mock) Gain() float64           { return m.gainLinear }

func (m *Mock) OnFinished(fn func()) { m.onFinished = fn }

// FinishTrack simulates the bound track draining naturally.
func (m *Mock) FinishTrack() {
	m.state = Stopped
	if m.onFinished != nil {
		m.onFinished()
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
