// Package eq holds the equalizer configuration: a preamp stage and a
// bank of fixed-frequency peaking bands. The signal topology is
// source → preamp gain → band filters → analyzer → output; this
// package owns the per-node gain parameters, not the filter math.
package eq

import (
	"errors"
	"math"
)

// NumBands is the fixed size of the band bank.
const NumBands = 5

// Frequencies are the peaking-band center frequencies in Hz.
var Frequencies = [NumBands]int{60, 310, 1000, 6000, 12000}

// CustomPreset names the implicit preset active once any band has been
// hand-adjusted.
const CustomPreset = "custom"

// Preset is a named gain configuration, all values in dB.
type Preset struct {
	Preamp float64
	Bands  [NumBands]float64
}

// Presets are the built-in configurations.
var Presets = map[string]Preset{
	CustomPreset: {Preamp: 0, Bands: [NumBands]float64{0, 0, 0, 0, 0}},
	"rock":       {Preamp: 1, Bands: [NumBands]float64{4, 3, -2, 3, 5}},
	"jazz":       {Preamp: 0, Bands: [NumBands]float64{3, 2, -1, 2, 3}},
	"pop":        {Preamp: 1, Bands: [NumBands]float64{1, 2, 0, 1, 2}},
	"classical":  {Preamp: 0, Bands: [NumBands]float64{-1, 0, 0, 1, 2}},
	"flat":       {Preamp: 0, Bands: [NumBands]float64{0, 0, 0, 0, 0}},
}

// ErrUnknownPreset is returned for a preset name not in Presets.
var ErrUnknownPreset = errors.New("unknown equalizer preset")

// Equalizer is the mutable equalizer state. Preamp and band gains are
// stored in dB as entered; Linear conversion happens at apply time.
type Equalizer struct {
	preset   string
	enabled  bool
	preamp   float64
	bands    [NumBands]float64
	onChange func()
}

// New returns a flat, enabled equalizer.
func New() *Equalizer {
	return &Equalizer{preset: "flat", enabled: true}
}

// OnChange registers a hook fired after every settings mutation.
func (e *Equalizer) OnChange(fn func()) {
	e.onChange = fn
}

// Restore loads persisted settings. A band slice of the wrong length is
// discarded in favor of defaults; the preset name is kept as stored.
func (e *Equalizer) Restore(preset string, enabled bool, preamp float64, bands []float64) {
	if preset == "" {
		preset = "flat"
	}
	e.preset = preset
	e.enabled = enabled
	e.preamp = preamp
	if len(bands) == NumBands {
		copy(e.bands[:], bands)
	} else {
		e.bands = [NumBands]float64{}
	}
}

// ApplyPreset replaces preamp and band gains with a named preset.
func (e *Equalizer) ApplyPreset(name string) error {
	p, ok := Presets[name]
	if !ok {
		return ErrUnknownPreset
	}
	e.preset = name
	e.preamp = p.Preamp
	e.bands = p.Bands
	e.changed()
	return nil
}

// SetBand hand-adjusts one band gain, flipping the active preset to
// "custom".
func (e *Equalizer) SetBand(i int, db float64) {
	if i < 0 || i >= NumBands {
		return
	}
	e.bands[i] = db
	e.preset = CustomPreset
	e.changed()
}

// SetPreamp sets the preamp gain in dB.
func (e *Equalizer) SetPreamp(db float64) {
	e.preamp = db
	e.changed()
}

// SetEnabled toggles the whole equalizer stage.
func (e *Equalizer) SetEnabled(on bool) {
	e.enabled = on
	e.changed()
}

// Enabled reports whether the equalizer stage is active.
func (e *Equalizer) Enabled() bool { return e.enabled }

// Preset returns the active preset name.
func (e *Equalizer) Preset() string { return e.preset }

// Preamp returns the preamp gain in dB as entered.
func (e *Equalizer) Preamp() float64 { return e.preamp }

// Bands returns the band gains in dB.
func (e *Equalizer) Bands() [NumBands]float64 { return e.bands }

// PreampLinear converts the preamp dB value to the linear factor
// applied to the gain node: 10^(dB/20), or unity when disabled.
func (e *Equalizer) PreampLinear() float64 {
	if !e.enabled {
		return 1.0
	}
	return math.Pow(10, e.preamp/20)
}

// BandGain returns the effective gain of band i in dB, zero when the
// equalizer is disabled.
func (e *Equalizer) BandGain(i int) float64 {
	if !e.enabled || i < 0 || i >= NumBands {
		return 0
	}
	return e.bands[i]
}

func (e *Equalizer) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}
