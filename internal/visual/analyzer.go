// Package visual computes per-band signal magnitudes from the live
// sample stream, for level-meter style displays.
package visual

import (
	"math"
	"sync"

	"github.com/mrenaud/cadence/internal/eq"
)

// DefaultWindowSize is the number of mono samples analyzed per reading.
// At 44.1kHz this is roughly 46ms of audio.
const DefaultWindowSize = 2048

// Analyzer keeps a sliding window over the most recent samples and
// measures the magnitude of each equalizer band frequency in it using
// the Goertzel algorithm.
type Analyzer struct {
	mu     sync.Mutex
	window []float64
	size   int
	rate   int
}

// NewAnalyzer creates an analyzer with the given window size. Sizes
// below 2 fall back to DefaultWindowSize.
func NewAnalyzer(windowSize int) *Analyzer {
	if windowSize < 2 {
		windowSize = DefaultWindowSize
	}
	return &Analyzer{size: windowSize}
}

// Process folds a block of stereo samples into the window. It is meant
// to be hooked up as the player's sample tap and is safe to call from
// the audio goroutine.
func (a *Analyzer) Process(samples [][2]float64, rate int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rate = rate
	for _, s := range samples {
		a.window = append(a.window, (s[0]+s[1])/2)
	}
	if n := len(a.window) - a.size; n > 0 {
		a.window = a.window[n:]
	}
}

// Bands returns one magnitude in [0,1] per equalizer band, measured
// over the current window. Before any samples arrive, all bands read
// zero.
func (a *Analyzer) Bands() [eq.NumBands]float64 {
	a.mu.Lock()
	window := append([]float64(nil), a.window...)
	rate := a.rate
	a.mu.Unlock()

	var out [eq.NumBands]float64
	if len(window) == 0 || rate <= 0 {
		return out
	}
	for i, freq := range eq.Frequencies {
		out[i] = clamp01(goertzel(window, float64(freq), rate))
	}
	return out
}

// Reset empties the window, for track transitions.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.window = a.window[:0]
}

// goertzel returns the normalized magnitude of a single frequency in
// the sample block.
func goertzel(samples []float64, freq float64, rate int) float64 {
	n := len(samples)
	k := freq * float64(n) / float64(rate)
	w := 2 * math.Pi * k / float64(n)
	coeff := 2 * math.Cos(w)

	var s0, s1, s2 float64
	for _, x := range samples {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	// A full-scale sine at the target frequency yields n/2 here.
	return 2 * math.Sqrt(power) / float64(n)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
