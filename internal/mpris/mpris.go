//go:build linux

// Package mpris exposes playback over the MPRIS D-Bus interface so
// desktop media keys and applets can drive the player.
package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/mrenaud/cadence/internal/playback"
)

// Adapter connects the playback controller to MPRIS over D-Bus.
type Adapter struct {
	controller *playback.Controller
	server     *server.Server
	done       chan struct{}
}

// New creates and starts a new MPRIS adapter.
func New(controller *playback.Controller) (*Adapter, error) {
	a := &Adapter{
		controller: controller,
		done:       make(chan struct{}),
	}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{controller: controller}

	a.server = server.NewServer("cadence", rootAdapter, playerAdapter)

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "Cadence", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/x-wav", "audio/ogg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	controller *playback.Controller
}

func (p *playerAdapter) Next() error {
	return p.controller.Next()
}

func (p *playerAdapter) Previous() error {
	return p.controller.Previous()
}

func (p *playerAdapter) Pause() error {
	p.controller.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	return p.controller.TogglePlayPause()
}

func (p *playerAdapter) Stop() error {
	p.controller.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	switch p.controller.Status() {
	case playback.StatusPaused:
		p.controller.Resume()
		return nil
	case playback.StatusIdle:
		return p.controller.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos := p.controller.Position() + time.Duration(offset)*time.Microsecond
	if pos < 0 {
		pos = 0
	}
	p.controller.SeekTo(pos)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.controller.SeekTo(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.controller.Status() {
	case playback.StatusPlaying, playback.StatusLoading:
		return types.PlaybackStatusPlaying, nil
	case playback.StatusPaused:
		return types.PlaybackStatusPaused, nil
	case playback.StatusIdle:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.controller.CurrentTrack()
	if track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.ID)),
		Length:  types.Microseconds(p.controller.Duration().Microseconds()),
		Title:   track.DisplayTitle(),
		Artist:  []string{track.DisplayArtist()},
	}
	if track.Metadata != nil {
		meta.Album = track.Metadata.Album
	}

	if artPath := coverPath(track); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil // Volume is managed by the session, not exposed here
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.controller.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.controller.HasNext(), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.controller.CurrentIndex() > 0 || p.controller.Repeat() == playback.RepeatAll, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.controller.Len() > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.controller.Repeat() {
	case playback.RepeatOne:
		return types.LoopStatusTrack, nil
	case playback.RepeatAll:
		return types.LoopStatusPlaylist, nil
	case playback.RepeatNone:
		return types.LoopStatusNone, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.controller.SetRepeat(playback.RepeatNone)
	case types.LoopStatusTrack:
		p.controller.SetRepeat(playback.RepeatOne)
	case types.LoopStatusPlaylist:
		p.controller.SetRepeat(playback.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.controller.Shuffled(), nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.controller.SetShuffle(shuffle)
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
