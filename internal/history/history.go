// Package history maintains play history and the manual play-next
// queue: a bounded most-recent-first list, an unbounded play-count
// tally, and a set-unique FIFO consulted before normal track advance.
package history

import "sort"

// DefaultRecentCap bounds the recently-played list.
const DefaultRecentCap = 25

// PlayCount pairs a track identity with its tally, for display.
type PlayCount struct {
	ID    string
	Count int
}

// Tracker owns the recently-played ring, the play-count map and the
// manual queue. It is not safe for concurrent use; the session
// serializes access.
type Tracker struct {
	recent    []string
	counts    map[string]int
	queue     []string
	recentCap int
	onChange  func() // persistence hook, fired on history mutation
}

// New creates an empty tracker with the given recently-played cap.
// A cap of zero or less falls back to DefaultRecentCap.
func New(recentCap int) *Tracker {
	if recentCap <= 0 {
		recentCap = DefaultRecentCap
	}
	return &Tracker{
		counts:    map[string]int{},
		recentCap: recentCap,
	}
}

// OnChange registers a hook invoked after every history mutation.
func (t *Tracker) OnChange(fn func()) {
	t.onChange = fn
}

// Restore loads persisted history. The recent list is truncated to the
// cap so an oversized stored document cannot grow the ring.
func (t *Tracker) Restore(recent []string, counts map[string]int) {
	if len(recent) > t.recentCap {
		recent = recent[:t.recentCap]
	}
	t.recent = append([]string(nil), recent...)
	t.counts = map[string]int{}
	for id, n := range counts {
		if n > 0 {
			t.counts[id] = n
		}
	}
}

// LogPlay records a successful playback start: move-to-front dedup
// insert into the recent list, dropping the oldest entry beyond the
// cap, and a count increment.
func (t *Tracker) LogPlay(id string) {
	if id == "" {
		return
	}
	filtered := t.recent[:0]
	for _, r := range t.recent {
		if r != id {
			filtered = append(filtered, r)
		}
	}
	t.recent = append([]string{id}, filtered...)
	if len(t.recent) > t.recentCap {
		t.recent = t.recent[:t.recentCap]
	}
	t.counts[id]++
	t.changed()
}

// Recent returns the recently-played identities, most recent first.
func (t *Tracker) Recent() []string {
	return append([]string(nil), t.recent...)
}

// Counts returns a copy of the play-count map.
func (t *Tracker) Counts() map[string]int {
	out := make(map[string]int, len(t.counts))
	for id, n := range t.counts {
		out[id] = n
	}
	return out
}

// Top returns the k most played tracks, highest count first.
func (t *Tracker) Top(k int) []PlayCount {
	all := make([]PlayCount, 0, len(t.counts))
	for id, n := range t.counts {
		all = append(all, PlayCount{ID: id, Count: n})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].ID < all[j].ID
	})
	if k > 0 && len(all) > k {
		all = all[:k]
	}
	return all
}

// Enqueue appends an identity to the play-next queue. Re-queueing an
// identity already present is a no-op; returns whether it was added.
func (t *Tracker) Enqueue(id string) bool {
	if id == "" {
		return false
	}
	for _, q := range t.queue {
		if q == id {
			return false
		}
	}
	t.queue = append(t.queue, id)
	return true
}

// Dequeue pops the front of the queue.
func (t *Tracker) Dequeue() (string, bool) {
	if len(t.queue) == 0 {
		return "", false
	}
	id := t.queue[0]
	t.queue = t.queue[1:]
	return id, true
}

// RemoveQueued drops an identity from the queue wherever it sits.
func (t *Tracker) RemoveQueued(id string) {
	filtered := t.queue[:0]
	for _, q := range t.queue {
		if q != id {
			filtered = append(filtered, q)
		}
	}
	t.queue = filtered
}

// ClearQueue empties the queue.
func (t *Tracker) ClearQueue() {
	t.queue = nil
}

// Queued returns the queue contents, front first.
func (t *Tracker) Queued() []string {
	return append([]string(nil), t.queue...)
}

// QueueLen returns the number of queued identities.
func (t *Tracker) QueueLen() int {
	return len(t.queue)
}

func (t *Tracker) changed() {
	if t.onChange != nil {
		t.onChange()
	}
}
