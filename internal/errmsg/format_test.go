package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaylistCreate,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPlaylistCreate,
			err:      errors.New("already exists"),
			expected: "Failed to create playlist: already exists",
		},
		{
			name:     "playback operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
		{
			name:     "track operation",
			op:       OpTrackAdd,
			err:      errors.New("no audio files"),
			expected: "Failed to add tracks: no audio files",
		},
		{
			name:     "persistence operation",
			op:       OpStateSave,
			err:      errors.New("disk full"),
			expected: "Failed to save state: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpTrackRemove,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpTrackTags,
			context:  "song.mp3",
			err:      errors.New("permission denied"),
			expected: "Failed to read file tags 'song.mp3': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpTrackTags,
			context:  "",
			err:      errors.New("permission denied"),
			expected: "Failed to read file tags: permission denied",
		},
		{
			name:     "playlist switch with name context",
			op:       OpPlaylistSwitch,
			context:  "Workout",
			err:      errors.New("unknown playlist"),
			expected: "Failed to switch playlist 'Workout': unknown playlist",
		},
		{
			name:     "equalizer preset with name context",
			op:       OpEqPreset,
			context:  "rock",
			err:      errors.New("unknown preset"),
			expected: "Failed to apply equalizer preset 'rock': unknown preset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpPlaylistCreate, OpPlaylistDelete, OpPlaylistSwitch, OpPlaylistLoad, OpPlaylistSave,
		OpTrackAdd, OpTrackRemove, OpTrackMove, OpTrackTags,
		OpPlaybackStart, OpPlaybackPause, OpPlaybackResume, OpPlaybackSeek,
		OpPlaybackNext, OpPlaybackPrev,
		OpQueueAdd, OpQueueRemove, OpQueueClear,
		OpEqPreset, OpEqBand,
		OpStateOpen, OpStateSave, OpStateLoad,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			expected := "Failed to " + string(op) + ": test error"
			if got := Format(op, testErr); got != expected {
				t.Errorf("Format = %q, want %q", got, expected)
			}
		})
	}
}
