package clock

import (
	"sync/atomic"

	"github.com/vovakirdan/tui-mania/internal/core"
)

// report pairs a position with the rate it was measured at, so a reader
// never observes a position from one rate and a multiplier from another.
type report struct {
	position core.SongTime
	rate     float64
}

// AudioFeed is the single shared cell between the audio schedule and the
// logic schedule: the audio side publishes (position, rate) pairs, the tick
// scheduler consumes the latest one between ticks. Neither side ever blocks.
type AudioFeed struct {
	latest atomic.Pointer[report]
	seq    atomic.Uint64 // bumped per publish so the consumer can skip stale reads
	seen   uint64        // last sequence consumed (logic schedule only)
}

// NewAudioFeed creates an empty feed.
func NewAudioFeed() *AudioFeed {
	return &AudioFeed{}
}

// Publish stores a fresh position report. Safe to call from any goroutine.
func (f *AudioFeed) Publish(position core.SongTime, rate float64) {
	f.latest.Store(&report{position: position, rate: rate})
	f.seq.Add(1)
}

// Consume returns the most recent unseen report, if any. Only the logic
// schedule may call this; a report is delivered at most once.
func (f *AudioFeed) Consume() (position core.SongTime, rate float64, ok bool) {
	seq := f.seq.Load()
	if seq == f.seen {
		return 0, 0, false
	}
	r := f.latest.Load()
	if r == nil {
		return 0, 0, false
	}
	f.seen = seq
	return r.position, r.rate, true
}
