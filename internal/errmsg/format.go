// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playlist operations
	OpPlaylistCreate Op = "create playlist"
	OpPlaylistDelete Op = "delete playlist"
	OpPlaylistSwitch Op = "switch playlist"
	OpPlaylistLoad   Op = "load playlists"
	OpPlaylistSave   Op = "save playlists"

	// Track operations
	OpTrackAdd    Op = "add tracks"
	OpTrackRemove Op = "remove track"
	OpTrackMove   Op = "move track"
	OpTrackTags   Op = "read file tags"

	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackPause  Op = "pause playback"
	OpPlaybackResume Op = "resume playback"
	OpPlaybackSeek   Op = "seek"
	OpPlaybackNext   Op = "skip to next track"
	OpPlaybackPrev   Op = "skip to previous track"

	// Queue operations
	OpQueueAdd    Op = "add to queue"
	OpQueueRemove Op = "remove from queue"
	OpQueueClear  Op = "clear queue"

	// Equalizer operations
	OpEqPreset Op = "apply equalizer preset"
	OpEqBand   Op = "adjust equalizer band"

	// Persistence operations
	OpStateOpen Op = "open state store"
	OpStateSave Op = "save state"
	OpStateLoad Op = "load state"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
