// Package player drives the audio output device. The signal chain is
// decoder → pause control → preamp gain → volume → sample tap, matching
// the source → preamp → filters → analyzer graph topology: the tap is
// where the analyzer listens.
package player

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Player is the beep-backed implementation of Interface. It is not safe
// for concurrent use; the session serializes access. The finished
// callback is the only entry from another goroutine.
type Player struct {
	state    State
	ctrl     *beep.Ctrl
	gain     *effects.Gain
	volume   *effects.Volume
	streamer beep.StreamSeekCloser
	format   beep.Format
	file     *os.File

	volumeLevel float64
	muted       bool
	gainLinear  float64

	onFinished func()
	processor  func(samples [][2]float64, sampleRate int)

	speakerReady bool
}

// speakerSampleRate is the fixed device rate. Files decoded at any
// other rate are resampled to it, so mixed-rate playlists keep correct
// pitch and speed.
const speakerSampleRate beep.SampleRate = 44100

const resampleQuality = 4

// resampled adapts a decoded stream to the fixed speaker rate.
func resampled(s beep.Streamer, from beep.SampleRate) beep.Streamer {
	if from == speakerSampleRate {
		return s
	}
	return beep.Resample(resampleQuality, from, speakerSampleRate, s)
}

// New creates a stopped player at full volume and unity gain.
func New() *Player {
	return &Player{
		state:       Stopped,
		volumeLevel: 1.0,
		gainLinear:  1.0,
	}
}

// OnFinished registers the natural end-of-track callback.
func (p *Player) OnFinished(fn func()) {
	p.onFinished = fn
}

// SetProcessor registers a sample tap invoked from the audio goroutine
// with each streamed block. Used by the analyzer.
func (p *Player) SetProcessor(fn func(samples [][2]float64, sampleRate int)) {
	p.processor = fn
}

// Play releases any bound resource, decodes the file at path and starts
// playback. Exactly one decode handle is open at a time.
func (p *Player) Play(path string) error {
	p.Stop()

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	if !p.speakerReady {
		if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			f.Close()
			return err
		}
		p.speakerReady = true
	}

	p.file = f
	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: resampled(streamer, format.SampleRate)}
	p.gain = &effects.Gain{Streamer: p.ctrl, Gain: p.gainLinear - 1}
	p.volume = &effects.Volume{
		Streamer: p.gain,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.muted || p.volumeLevel == 0,
	}

	chain := beep.Streamer(p.volume)
	if p.processor != nil {
		// Everything past the resampler runs at the speaker rate.
		chain = &tapStreamer{s: chain, fn: p.processor, rate: int(speakerSampleRate)}
	}

	p.state = Playing
	// The callback fires on the audio goroutine with the speaker mutex
	// held; the handler will touch the speaker again, so it must run on
	// its own goroutine.
	speaker.Play(beep.Seq(chain, beep.Callback(p.dispatchFinished)))

	return nil
}

func (p *Player) dispatchFinished() {
	if p.onFinished != nil {
		go p.onFinished()
	}
}

// Stop halts playback and releases the decode handle. The finished
// callback does not fire.
func (p *Player) Stop() {
	if p.state == Stopped {
		return
	}

	speaker.Clear()

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	p.ctrl = nil
	p.gain = nil
	p.volume = nil
	p.state = Stopped
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.state != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

// Resume resumes paused playback.
func (p *Player) Resume() {
	if p.state != Paused || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

// State returns the current output state.
func (p *Player) State() State {
	return p.state
}

// Position returns the playback position within the bound track.
func (p *Player) Position() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	n := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(n)
}

// Duration returns the bound track's duration.
func (p *Player) Duration() time.Duration {
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// SeekTo moves the playback position.
func (p *Player) SeekTo(pos time.Duration) {
	if p.streamer == nil {
		return
	}
	n := p.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if max := p.streamer.Len(); n > max {
		n = max
	}
	speaker.Lock()
	_ = p.streamer.Seek(n)
	speaker.Unlock()
}

// SetGain sets the preamp stage's linear gain factor.
func (p *Player) SetGain(linear float64) {
	p.gainLinear = linear
	if p.gain != nil {
		speaker.Lock()
		p.gain.Gain = linear - 1
		speaker.Unlock()
	}
}

// SetVolume sets the output level (0.0 to 1.0).
func (p *Player) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	p.volumeLevel = level

	if p.volume != nil {
		speaker.Lock()
		p.volume.Volume = levelToVolume(level)
		p.volume.Silent = p.muted || level == 0
		speaker.Unlock()
	}
}

// Volume returns the output level (0.0 to 1.0).
func (p *Player) Volume() float64 {
	return p.volumeLevel
}

// SetMuted silences output without losing the level.
func (p *Player) SetMuted(muted bool) {
	p.muted = muted
	if p.volume != nil {
		speaker.Lock()
		p.volume.Silent = muted || p.volumeLevel == 0
		speaker.Unlock()
	}
}

// Muted returns true if output is muted.
func (p *Player) Muted() bool {
	return p.muted
}

// levelToVolume converts a 0.0-1.0 level to beep's logarithmic volume:
// 1.0 -> 0 (unchanged), 0.5 -> -1 (half), 0.25 -> -2.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

// tapStreamer forwards samples downstream while letting the processor
// observe each streamed block.
type tapStreamer struct {
	s    beep.Streamer
	fn   func(samples [][2]float64, sampleRate int)
	rate int
}

func (t *tapStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	if n > 0 {
		t.fn(samples[:n], t.rate)
	}
	return n, ok
}

func (t *tapStreamer) Err() error {
	return t.s.Err()
}
