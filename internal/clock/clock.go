// Package clock tracks authoritative song time. Between audio position
// reports, which arrive at coarser and irregular intervals than the logic
// tick, time is extrapolated locally from elapsed wall time scaled by the
// rate multiplier. A fresh report replaces the extrapolated estimate
// outright, so drift can never accumulate.
package clock

import "github.com/vovakirdan/tui-mania/internal/core"

// Rate bounds for playback; SetRate clamps to this range.
const (
	MinRate = 0.5
	MaxRate = 2.0
)

// State is the restorable portion of a clock, captured by checkpoints.
type State struct {
	Song core.SongTime
	Rate float64
}

// Clock is owned exclusively by the tick scheduler and mutated only between
// ticks. It is not safe for concurrent use; cross-thread position reports go
// through an AudioFeed.
type Clock struct {
	song core.SongTime
	rate float64
}

// New creates a clock positioned at the start of the lead-in: song time
// begins at -leadIn and crosses zero when the audio starts.
func New(leadIn core.SongTime, rate float64) *Clock {
	c := &Clock{song: -leadIn, rate: 1.0}
	c.SetRate(rate)
	return c
}

// Advance extrapolates song time by elapsed wall time scaled by the rate
// multiplier, and returns the new song time.
func (c *Clock) Advance(elapsed core.SongTime) core.SongTime {
	c.song += elapsed.Scale(c.rate)
	return c.song
}

// Report replaces the extrapolated estimate with an authoritative audio
// position. Replacement, not blending: the estimate never double-counts.
func (c *Clock) Report(audio core.SongTime) {
	c.song = audio
}

// SetRate changes the rate multiplier, clamped to [MinRate, MaxRate].
// The scheduler only calls this between ticks so a single tick's
// judgements stay internally consistent.
func (c *Clock) SetRate(rate float64) {
	if rate < MinRate {
		rate = MinRate
	}
	if rate > MaxRate {
		rate = MaxRate
	}
	c.rate = rate
}

// Rate returns the active rate multiplier.
func (c *Clock) Rate() float64 { return c.rate }

// Now returns the current song time estimate.
func (c *Clock) Now() core.SongTime { return c.song }

// State captures the clock for a checkpoint.
func (c *Clock) State() State {
	return State{Song: c.song, Rate: c.rate}
}

// Restore rolls the clock back to a captured state.
func (c *Clock) Restore(s State) {
	c.song = s.Song
	c.rate = s.Rate
}
