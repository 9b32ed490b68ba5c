// Package core provides fundamental types shared by the simulation core.
// It contains no external dependencies (especially no Bubble Tea) to keep
// the gameplay logic pure and testable.
package core

// InputAction is the kind of a key transition on a playfield column.
type InputAction int

const (
	Press InputAction = iota
	Release
)

// String returns a human-readable name for the action.
func (a InputAction) String() string {
	switch a {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// InputEvent is a single timestamped key transition captured from the input
// layer. Time is the song time at capture, not wall-clock arrival time.
// Each event is consumed exactly once by the judgement engine.
type InputEvent struct {
	Time   SongTime
	Column int
	Action InputAction
}

// Before reports whether e should be processed ahead of other. Events with
// equal timestamps keep a stable ordering by column, then press-before-release,
// so sorting a drained batch is deterministic.
func (e InputEvent) Before(other InputEvent) bool {
	if e.Time != other.Time {
		return e.Time < other.Time
	}
	if e.Column != other.Column {
		return e.Column < other.Column
	}
	return e.Action < other.Action
}
