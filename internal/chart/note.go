// Package chart provides the immutable, time-ordered note representation
// backing a single play. A Chart is built once from an externally supplied
// note list and never mutated; judging passes keep their own cursors so the
// same Chart can back a live run and a replay verification at the same time.
package chart

import "github.com/vovakirdan/tui-mania/internal/core"

// Kind distinguishes tap notes from hold notes.
type Kind int

const (
	Tap Kind = iota
	Hold
)

// String returns a human-readable name for the note kind.
func (k Kind) String() string {
	switch k {
	case Tap:
		return "tap"
	case Hold:
		return "hold"
	default:
		return "unknown"
	}
}

// Note is a single chart object. Time is the head (hit) time; EndTime is the
// tail time for holds and zero for taps. Notes are immutable once the chart
// is built.
type Note struct {
	Column  int
	Time    core.SongTime
	EndTime core.SongTime
	Kind    Kind
}

// IsHold reports whether the note requires a sustained press.
func (n Note) IsHold() bool {
	return n.Kind == Hold
}

// Duration returns the hold length, or zero for taps.
func (n Note) Duration() core.SongTime {
	if !n.IsHold() {
		return 0
	}
	return n.EndTime - n.Time
}
