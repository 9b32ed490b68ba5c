package engine

import (
	"sort"
	"sync"

	"github.com/vovakirdan/tui-mania/internal/core"
)

// InputQueue buffers timestamped input events from any number of producer
// goroutines until the logic tick drains it. Producers only ever append;
// ordering and staleness are resolved at drain time on the consumer side.
type InputQueue struct {
	mu      sync.Mutex
	pending []core.InputEvent
	stale   uint64
}

// NewInputQueue returns an empty queue.
func NewInputQueue() *InputQueue {
	return &InputQueue{}
}

// Push appends an event. Safe to call from any goroutine.
func (q *InputQueue) Push(ev core.InputEvent) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

// Drain removes all buffered events and returns them sorted by timestamp.
// Events stamped earlier than now minus tolerance arrived too late to judge
// fairly; they are dropped and counted instead of being judged out of order.
func (q *InputQueue) Drain(now, tolerance core.SongTime) []core.InputEvent {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	kept := batch[:0]
	for _, ev := range batch {
		if ev.Time < now-tolerance {
			q.stale++
			continue
		}
		kept = append(kept, ev)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Before(kept[j])
	})
	return kept
}

// Clear discards all buffered events without counting them as stale. Used
// when a checkpoint restore rewinds the clock past their timestamps.
func (q *InputQueue) Clear() {
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()
}

// StaleDropped returns how many events have been dropped as too old.
// Consumer-side only, like Drain.
func (q *InputQueue) StaleDropped() uint64 {
	return q.stale
}
