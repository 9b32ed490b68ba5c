package core

import (
	"fmt"
	"time"
)

// SongTime is a position on the song timeline in microseconds.
// It is negative during the pre-roll lead-in before the first sample plays.
// All timing-critical state uses integer microseconds so that replaying a
// recorded run reproduces bit-identical results.
type SongTime int64

// FromMillis converts a millisecond offset to a SongTime.
func FromMillis(ms int64) SongTime {
	return SongTime(ms * 1000)
}

// FromMillisF converts a fractional millisecond offset to a SongTime,
// rounding to the nearest microsecond. Used only at construction time
// (hit window derivation); never on the per-tick path.
func FromMillisF(ms float64) SongTime {
	return SongTime(ms*1000 + 0.5)
}

// FromDuration converts a wall-clock duration to a SongTime span.
func FromDuration(d time.Duration) SongTime {
	return SongTime(d.Microseconds())
}

// Millis returns the time truncated to whole milliseconds.
func (t SongTime) Millis() int64 {
	return int64(t) / 1000
}

// Duration returns the time as a time.Duration.
func (t SongTime) Duration() time.Duration {
	return time.Duration(t) * time.Microsecond
}

// Abs returns the absolute value.
func (t SongTime) Abs() SongTime {
	if t < 0 {
		return -t
	}
	return t
}

// Scale multiplies the time span by a rate multiplier, truncating to whole
// microseconds. A single float64 multiply followed by truncation is
// reproducible across runs of the same binary.
func (t SongTime) Scale(rate float64) SongTime {
	return SongTime(float64(t) * rate)
}

func (t SongTime) String() string {
	return fmt.Sprintf("%.3fs", float64(t)/1e6)
}
