package engine

import (
	"errors"

	"github.com/vovakirdan/tui-mania/internal/clock"
	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/score"
)

var (
	// ErrNoCheckpoint is returned when a restore is requested before any
	// checkpoint has been marked.
	ErrNoCheckpoint = errors.New("engine: no checkpoint set")

	// ErrCheckpointTooSoon is returned when a mark is requested before the
	// minimum interval since the previous mark has elapsed.
	ErrCheckpointTooSoon = errors.New("engine: checkpoint marked too soon")
)

// Checkpoint captures everything a retry needs: the song position plus the
// clock, judging and scoring state at that moment. Restoring one rolls all
// four back together or not at all.
type Checkpoint struct {
	Song  core.SongTime
	Clock clock.State
	Judge judge.CursorState
	Score score.State
}

// Checkpoints holds at most one saved checkpoint and enforces a minimum
// song-time interval between marks. Single-goroutine, owned by the
// scheduler like its other state.
type Checkpoints struct {
	minInterval core.SongTime
	saved       Checkpoint
	lastMark    core.SongTime
	marked      bool
}

// NewCheckpoints returns a manager with no saved checkpoint.
func NewCheckpoints(minInterval core.SongTime) *Checkpoints {
	return &Checkpoints{minInterval: minInterval}
}

// Mark replaces the saved checkpoint. Marks closer together than the
// minimum interval are rejected and leave the previous checkpoint intact.
func (c *Checkpoints) Mark(cp Checkpoint) error {
	if c.marked && cp.Song-c.lastMark < c.minInterval {
		return ErrCheckpointTooSoon
	}
	c.saved = cp
	c.lastMark = cp.Song
	c.marked = true
	return nil
}

// Saved returns the saved checkpoint, or ErrNoCheckpoint.
func (c *Checkpoints) Saved() (Checkpoint, error) {
	if !c.marked {
		return Checkpoint{}, ErrNoCheckpoint
	}
	return c.saved, nil
}
