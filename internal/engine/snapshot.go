package engine

import (
	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/score"
)

// Status is the run lifecycle state.
type Status int

const (
	Idle Status = iota
	Running
	Paused
	Finished
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// NoteView is one renderable note: everything the render side needs to place
// it on a lane, with no pointer back into the chart.
type NoteView struct {
	Column  int
	Time    core.SongTime
	EndTime core.SongTime
	Hold    bool
	Held    bool // armed hold, head judged, tail pending
}

// Snapshot is an immutable, self-contained view of the run at one tick.
// Readers on other schedules render from it without touching engine state;
// a new one is published every tick and old ones stay valid forever.
type Snapshot struct {
	Status Status
	Song   core.SongTime
	Rate   float64

	// Notes within the lookahead horizon plus any armed holds.
	Notes []NoteView

	Score score.State

	// Most recent judgement, for the hit flash. Time tells the renderer
	// how stale the flash is.
	LastJudgement judge.Judgement
	HasJudgement  bool

	// Diagnostics.
	NPS          int // presses in the last second of song time
	GhostTaps    int
	StaleDropped uint64
	JudgedParts  int
	TotalParts   int
	Duration     core.SongTime // end of the last note

	HasCheckpoint bool
	CheckpointAt  core.SongTime
}
