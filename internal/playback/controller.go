// Package playback implements the player's central state machine: it
// binds tracks to the media output, applies the shuffle/repeat policy
// and lets the manual queue preempt normal track advance.
package playback

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mrenaud/cadence/internal/catalog"
	"github.com/mrenaud/cadence/internal/history"
	"github.com/mrenaud/cadence/internal/player"
)

// ErrNeedsReselection marks a track whose file handle is gone (it was
// restored from a persisted snapshot). Display state may update but no
// playback is attempted.
var ErrNeedsReselection = errors.New("track needs re-selection")

// ErrEmptyPlaylist is returned when playback is requested on an empty
// playlist.
var ErrEmptyPlaylist = errors.New("playlist is empty")

// MetadataFunc lazily extracts metadata for a file handle. It runs
// without the controller lock held, so implementations may block.
type MetadataFunc func(handle, name string) (*catalog.Metadata, error)

// Controller drives the media output over a playback order derived from
// the active playlist. The currently audible track is tracked by
// identity, not index, so reorders and shuffles never swap it silently.
type Controller struct {
	mu sync.Mutex

	out      player.Interface
	tracker  *history.Tracker
	readMeta MetadataFunc

	original []*catalog.Track // user-curated order
	order    []*catalog.Track // original or a shuffled permutation

	index     int    // position in order, -1 = none
	currentID string // identity bound to the output
	status    Status
	shuffled  bool
	repeat    RepeatMode

	rng *rand.Rand

	subs   []*Subscription
	subsMu sync.Mutex

	onModeChange func(repeat RepeatMode, shuffled bool) // persistence hook
}

// New creates an idle controller.
func New(out player.Interface, tracker *history.Tracker, readMeta MetadataFunc) *Controller {
	c := &Controller{
		out:      out,
		tracker:  tracker,
		readMeta: readMeta,
		index:    -1,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	out.OnFinished(c.handleFinished)
	return c
}

// OnModeChange registers a hook fired after repeat or shuffle changes.
func (c *Controller) OnModeChange(fn func(repeat RepeatMode, shuffled bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onModeChange = fn
}

// RestoreModes loads persisted shuffle and repeat without firing hooks.
func (c *Controller) RestoreModes(shuffled bool, repeat RepeatMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shuffled = shuffled
	c.repeat = repeat
}

// SetTracks replaces the playback session's track list. With reset set
// (the active playlist changed) all session state is cleared; without
// it (a structural mutation of the same playlist) the audible track is
// preserved by identity where possible.
func (c *Controller) SetTracks(tracks []*catalog.Track, reset bool) {
	c.mu.Lock()
	c.original = append([]*catalog.Track(nil), tracks...)
	if reset {
		c.rebuildOrderLocked()
		c.index = -1
		c.currentID = ""
		c.out.Stop()
		c.setStatusLocked(StatusIdle)
		c.mu.Unlock()
		return
	}

	c.rebuildOrderLocked()
	if c.currentID == "" {
		c.mu.Unlock()
		return
	}
	if i := c.indexOfLocked(c.currentID); i >= 0 {
		c.index = i
		c.mu.Unlock()
		return
	}
	// The bound track was removed.
	prev := c.currentID
	c.index = -1
	c.currentID = ""
	c.out.Stop()
	c.setStatusLocked(StatusIdle)
	c.mu.Unlock()
	c.emitTrack(TrackChange{PreviousID: prev, Index: -1})
}

// ReorderApplied re-derives the playback order after a manual reorder.
// Reordering only makes sense against a deterministic order, so shuffle
// is forced off.
func (c *Controller) ReorderApplied(tracks []*catalog.Track) {
	c.mu.Lock()
	c.original = append([]*catalog.Track(nil), tracks...)
	wasShuffled := c.shuffled
	c.shuffled = false
	c.order = append([]*catalog.Track(nil), c.original...)
	if c.currentID != "" {
		c.index = c.indexOfLocked(c.currentID)
	}
	repeat := c.repeat
	hook := c.onModeChange
	c.mu.Unlock()

	if wasShuffled {
		c.emitMode(ModeChange{Repeat: repeat, Shuffled: false})
		if hook != nil {
			hook(repeat, false)
		}
	}
}

// PlayIndex binds and plays the track at the given playback-order
// index. Out-of-range indices clamp to the start; an empty playlist
// transitions to Idle.
func (c *Controller) PlayIndex(index int) error {
	c.mu.Lock()
	if len(c.order) == 0 {
		c.index = -1
		c.currentID = ""
		c.out.Stop()
		c.setStatusLocked(StatusIdle)
		c.mu.Unlock()
		return ErrEmptyPlaylist
	}
	if index < 0 || index >= len(c.order) {
		index = 0
	}

	track := c.order[index]
	prevID := c.currentID
	c.index = index
	c.currentID = track.ID
	id := track.ID

	if !track.HasHandle() {
		// Recoverable: display metadata may update, no playback.
		c.out.Stop()
		c.setStatusLocked(StatusIdle)
		c.mu.Unlock()
		c.emitTrack(TrackChange{PreviousID: prevID, ID: id, Index: index})
		c.emitError(ErrorEvent{Op: "play", TrackID: id, Err: ErrNeedsReselection})
		return ErrNeedsReselection
	}

	handle := track.Handle
	name := track.Name
	needMeta := track.Metadata == nil || track.Metadata.Incomplete()
	c.setStatusLocked(StatusLoading)
	c.mu.Unlock()

	if needMeta && c.readMeta != nil {
		meta, err := c.readMeta(handle, name)
		c.mu.Lock()
		// Re-validate: playback may have been re-targeted while the
		// extraction ran.
		if c.currentID == id {
			if track.Metadata == nil {
				track.Metadata = catalog.NewMetadata()
			}
			if err == nil {
				track.Metadata.Merge(meta)
			} else {
				track.Metadata.Backfill()
			}
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	if c.currentID != id {
		// Superseded by another play request.
		c.mu.Unlock()
		return nil
	}
	if err := c.out.Play(handle); err != nil {
		c.setStatusLocked(StatusIdle)
		c.mu.Unlock()
		c.emitError(ErrorEvent{Op: "play", TrackID: id, Err: err})
		return fmt.Errorf("start playback: %w", err)
	}
	c.setStatusLocked(StatusPlaying)
	c.tracker.LogPlay(id)
	c.mu.Unlock()

	c.emitTrack(TrackChange{PreviousID: prevID, ID: id, Index: index})
	return nil
}

// PlayID plays the track with the given identity from the playback
// order.
func (c *Controller) PlayID(id string) error {
	c.mu.Lock()
	i := c.indexOfLocked(id)
	c.mu.Unlock()
	if i < 0 {
		c.emitError(ErrorEvent{Op: "play", TrackID: id, Err: catalog.ErrUnknownTrack})
		return catalog.ErrUnknownTrack
	}
	return c.PlayIndex(i)
}

// HandleTrackEnd applies the end-of-track policy: the manual queue
// always wins, then repeat-one restarts, then normal advance with
// repeat-all wraparound.
func (c *Controller) HandleTrackEnd() {
	for {
		c.mu.Lock()
		queuedID, queued := c.tracker.Dequeue()
		c.mu.Unlock()
		if !queued {
			break
		}
		err := c.PlayID(queuedID)
		if err == nil || !errors.Is(err, catalog.ErrUnknownTrack) {
			return
		}
		// Stale queue entry; try the next one.
	}

	c.mu.Lock()
	if c.repeat == RepeatOne && c.currentID != "" && c.index >= 0 {
		index := c.index
		c.mu.Unlock()
		c.restart(index)
		return
	}
	c.mu.Unlock()

	c.advance()
}

// Next moves to the following track, wrapping only under repeat-all.
func (c *Controller) Next() error {
	c.mu.Lock()
	if len(c.order) == 0 {
		c.mu.Unlock()
		return ErrEmptyPlaylist
	}
	next := c.index + 1
	if next >= len(c.order) {
		if c.repeat != RepeatAll {
			c.stopToIdleLocked()
			c.mu.Unlock()
			return nil
		}
		next = 0
	}
	c.mu.Unlock()
	return c.PlayIndex(next)
}

// Previous moves to the preceding track. At the first track with
// repeat≠all it restarts the current track instead of wrapping.
func (c *Controller) Previous() error {
	c.mu.Lock()
	if len(c.order) == 0 {
		c.mu.Unlock()
		return ErrEmptyPlaylist
	}
	prev := c.index - 1
	if prev < 0 {
		if c.repeat != RepeatAll {
			c.mu.Unlock()
			c.SeekTo(0)
			return nil
		}
		prev = len(c.order) - 1
	}
	c.mu.Unlock()
	return c.PlayIndex(prev)
}

// TogglePlayPause starts playback when idle, otherwise flips
// playing/paused.
func (c *Controller) TogglePlayPause() error {
	c.mu.Lock()
	status := c.status
	empty := len(c.order) == 0
	c.mu.Unlock()

	switch status {
	case StatusIdle:
		if empty {
			return ErrEmptyPlaylist
		}
		return c.PlayIndex(0)
	case StatusPlaying:
		c.Pause()
	case StatusPaused:
		c.Resume()
	}
	return nil
}

// Pause pauses playback; a no-op unless playing.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPlaying {
		return
	}
	c.out.Pause()
	c.setStatusLocked(StatusPaused)
}

// Resume resumes paused playback.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPaused {
		return
	}
	c.out.Resume()
	c.setStatusLocked(StatusPlaying)
}

// Stop releases the output and returns to Idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopToIdleLocked()
}

// SeekTo moves the position within the bound track.
func (c *Controller) SeekTo(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.status.IsActive() {
		return
	}
	c.out.SeekTo(pos)
}

// ToggleShuffle flips shuffle, recomputing the playback order and
// relocating the audible track by identity.
func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	c.shuffled = !c.shuffled
	c.rebuildOrderLocked()
	if c.currentID != "" {
		c.index = c.indexOfLocked(c.currentID)
	} else {
		c.index = -1
	}
	shuffled := c.shuffled
	repeat := c.repeat
	hook := c.onModeChange
	c.mu.Unlock()

	c.emitMode(ModeChange{Repeat: repeat, Shuffled: shuffled})
	if hook != nil {
		hook(repeat, shuffled)
	}
	return shuffled
}

// SetShuffle sets shuffle to an explicit value.
func (c *Controller) SetShuffle(on bool) {
	c.mu.Lock()
	current := c.shuffled
	c.mu.Unlock()
	if current != on {
		c.ToggleShuffle()
	}
}

// SetRepeat sets the repeat mode.
func (c *Controller) SetRepeat(mode RepeatMode) {
	c.mu.Lock()
	c.repeat = mode
	shuffled := c.shuffled
	hook := c.onModeChange
	c.mu.Unlock()

	c.emitMode(ModeChange{Repeat: mode, Shuffled: shuffled})
	if hook != nil {
		hook(mode, shuffled)
	}
}

// CycleRepeat advances none → one → all and returns the new mode.
func (c *Controller) CycleRepeat() RepeatMode {
	c.mu.Lock()
	mode := c.repeat.Cycle()
	c.mu.Unlock()
	c.SetRepeat(mode)
	return mode
}

// Status returns the controller state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// CurrentTrack returns the bound track, or nil.
func (c *Controller) CurrentTrack() *catalog.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index < 0 || c.index >= len(c.order) || c.currentID == "" {
		return nil
	}
	return c.order[c.index]
}

// CurrentID returns the bound track identity, or empty.
func (c *Controller) CurrentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}

// CurrentIndex returns the position in the playback order (-1 = none).
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Order returns a copy of the current playback order.
func (c *Controller) Order() []*catalog.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*catalog.Track(nil), c.order...)
}

// Len returns the playback order length.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Shuffled reports whether shuffle is on.
func (c *Controller) Shuffled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shuffled
}

// Repeat returns the repeat mode.
func (c *Controller) Repeat() RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repeat
}

// HasNext reports whether a Next call would start a track.
func (c *Controller) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.order) == 0 {
		return false
	}
	return c.index < len(c.order)-1 || c.repeat == RepeatAll || c.tracker.QueueLen() > 0
}

// Position returns the output position.
func (c *Controller) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Position()
}

// Duration returns the bound track duration.
func (c *Controller) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Duration()
}

// Enqueue appends a track identity to the play-next queue; duplicates
// are ignored.
func (c *Controller) Enqueue(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Enqueue(id)
}

// Queued returns the queue contents.
func (c *Controller) Queued() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Queued()
}

// RemoveQueued drops an identity from the queue.
func (c *Controller) RemoveQueued(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker.RemoveQueued(id)
}

// ClearQueue empties the queue.
func (c *Controller) ClearQueue() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker.ClearQueue()
}

// Recent returns recently played identities, newest first.
func (c *Controller) Recent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Recent()
}

// Top returns the k most played tracks.
func (c *Controller) Top(k int) []history.PlayCount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Top(k)
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Close stops playback and closes all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	c.out.Stop()
	c.status = StatusIdle
	c.mu.Unlock()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()
}

// handleFinished is the output's end-of-track callback. It fires on the
// audio goroutine, so the state it was scheduled under may be gone:
// only a still-playing controller advances.
func (c *Controller) handleFinished() {
	c.mu.Lock()
	if c.status != StatusPlaying {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.HandleTrackEnd()
}

// advance implements the normal next-track step of end-of-track.
func (c *Controller) advance() {
	c.mu.Lock()
	if len(c.order) == 0 {
		c.stopToIdleLocked()
		c.mu.Unlock()
		return
	}
	next := c.index + 1
	if next >= len(c.order) {
		if c.repeat != RepeatAll {
			c.stopToIdleLocked()
			c.mu.Unlock()
			return
		}
		next = 0
	}
	c.mu.Unlock()
	_ = c.PlayIndex(next)
}

// restart replays the track at index from the start without logging a
// new play.
func (c *Controller) restart(index int) {
	c.mu.Lock()
	if index < 0 || index >= len(c.order) {
		c.mu.Unlock()
		return
	}
	track := c.order[index]
	if !track.HasHandle() {
		c.stopToIdleLocked()
		c.mu.Unlock()
		return
	}
	if err := c.out.Play(track.Handle); err != nil {
		c.setStatusLocked(StatusIdle)
		id := track.ID
		c.mu.Unlock()
		c.emitError(ErrorEvent{Op: "repeat", TrackID: id, Err: err})
		return
	}
	c.setStatusLocked(StatusPlaying)
	c.mu.Unlock()
}

func (c *Controller) stopToIdleLocked() {
	c.out.Stop()
	c.index = -1
	c.currentID = ""
	c.setStatusLocked(StatusIdle)
}

func (c *Controller) rebuildOrderLocked() {
	if c.shuffled {
		c.order = c.permuteLocked(c.original)
	} else {
		c.order = append([]*catalog.Track(nil), c.original...)
	}
}

// permuteLocked returns a uniform random permutation (Fisher–Yates).
func (c *Controller) permuteLocked(tracks []*catalog.Track) []*catalog.Track {
	out := append([]*catalog.Track(nil), tracks...)
	for i := len(out) - 1; i > 0; i-- {
		j := c.rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (c *Controller) indexOfLocked(id string) int {
	for i, t := range c.order {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) setStatusLocked(s Status) {
	if c.status == s {
		return
	}
	prev := c.status
	c.status = s
	go c.emitState(StateChange{Previous: prev, Current: s})
}

func (c *Controller) emitState(e StateChange) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		sub.sendState(e)
	}
}

func (c *Controller) emitTrack(e TrackChange) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		sub.sendTrack(e)
	}
}

func (c *Controller) emitMode(e ModeChange) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		sub.sendMode(e)
	}
}

func (c *Controller) emitError(e ErrorEvent) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		sub.sendError(e)
	}
}
