package state

import "log"

// EqSettings is the persisted equalizer document.
type EqSettings struct {
	PresetName string    `json:"presetName"`
	Enabled    bool      `json:"enabled"`
	Preamp     float64   `json:"preamp"`
	Bands      []float64 `json:"bands"`
}

// VolumeSettings is the persisted volume document.
type VolumeSettings struct {
	Level           float64 `json:"level"`
	LevelBeforeMute float64 `json:"levelBeforeMute"`
}

// GetShuffle returns the saved shuffle flag, default off.
func (m *Manager) GetShuffle() bool {
	var on bool
	m.get(keyShuffle, &on)
	return on
}

// SaveShuffle persists the shuffle flag.
func (m *Manager) SaveShuffle(on bool) {
	if err := m.put(keyShuffle, on); err != nil {
		logPut(keyShuffle, err)
	}
}

// GetRepeatMode returns the saved repeat mode string. Anything other
// than "one" or "all" defaults to "none".
func (m *Manager) GetRepeatMode() string {
	var mode string
	m.get(keyRepeatMode, &mode)
	switch mode {
	case "one", "all":
		return mode
	}
	return "none"
}

// SaveRepeatMode persists the repeat mode.
func (m *Manager) SaveRepeatMode(mode string) {
	if err := m.put(keyRepeatMode, mode); err != nil {
		logPut(keyRepeatMode, err)
	}
}

// GetEq returns the saved equalizer settings, or defaults (flat,
// enabled) when absent or malformed.
func (m *Manager) GetEq() EqSettings {
	s := EqSettings{PresetName: "flat", Enabled: true}
	m.get(keyEqSettings, &s)
	if s.PresetName == "" {
		s.PresetName = "flat"
	}
	return s
}

// SaveEq persists the equalizer settings.
func (m *Manager) SaveEq(s EqSettings) {
	if err := m.put(keyEqSettings, s); err != nil {
		logPut(keyEqSettings, err)
	}
}

// GetVolume returns the saved volume settings, default full volume.
func (m *Manager) GetVolume() VolumeSettings {
	s := VolumeSettings{Level: 1.0, LevelBeforeMute: 1.0}
	m.get(keyVolume, &s)
	if s.Level < 0 || s.Level > 1 {
		s.Level = 1.0
	}
	if s.LevelBeforeMute < 0 || s.LevelBeforeMute > 1 {
		s.LevelBeforeMute = 1.0
	}
	return s
}

// SaveVolume persists the volume settings.
func (m *Manager) SaveVolume(s VolumeSettings) {
	if err := m.put(keyVolume, s); err != nil {
		logPut(keyVolume, err)
	}
}

// GetHistory returns the saved recently-played list and play counts.
func (m *Manager) GetHistory() ([]string, map[string]int) {
	var recent []string
	counts := map[string]int{}
	m.get(keyRecentlyPlayed, &recent)
	m.get(keyMostPlayed, &counts)
	return recent, counts
}

// SaveHistory persists both history documents.
func (m *Manager) SaveHistory(recent []string, counts map[string]int) {
	if err := m.put(keyRecentlyPlayed, recent); err != nil {
		logPut(keyRecentlyPlayed, err)
	}
	if err := m.put(keyMostPlayed, counts); err != nil {
		logPut(keyMostPlayed, err)
	}
}

func logPut(key string, err error) {
	log.Printf("state: save %s: %v", key, err)
}
