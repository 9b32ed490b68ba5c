package judge

import (
	"sort"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/core"
)

// Part says which end of a note a judgement belongs to. Taps only ever
// produce Head judgements; holds produce exactly one Head and one Tail.
type Part int

const (
	Head Part = iota
	Tail
)

func (p Part) String() string {
	if p == Tail {
		return "tail"
	}
	return "head"
}

// Judgement is the immutable result of judging one note part.
// Offset is eventTime minus noteTime: negative means early, positive late.
type Judgement struct {
	Column    int
	NoteIndex int // index within the column's note sequence
	Part      Part
	Tier      Tier
	Offset    core.SongTime
	Time      core.SongTime // song time when the judgement was created
}

// HoldState tracks an armed hold in one column: the head has been judged and
// the tail is pending a release or completion.
type HoldState struct {
	Active    bool
	NoteIndex int
}

// CursorState is everything a judging pass needs to be rolled back:
// per-column cursors, armed holds, and the ghost tap counter. Restoring a
// CursorState makes future notes judgeable again without touching the Chart.
type CursorState struct {
	Cursors   []int
	Holds     []HoldState
	Ahead     [][]bool
	GhostTaps int
	Judged    int
}

// Clone deep-copies the state.
func (s CursorState) Clone() CursorState {
	c := CursorState{
		Cursors:   make([]int, len(s.Cursors)),
		Holds:     make([]HoldState, len(s.Holds)),
		Ahead:     make([][]bool, len(s.Ahead)),
		GhostTaps: s.GhostTaps,
		Judged:    s.Judged,
	}
	copy(c.Cursors, s.Cursors)
	copy(c.Holds, s.Holds)
	for col, marks := range s.Ahead {
		c.Ahead[col] = make([]bool, len(marks))
		copy(c.Ahead[col], marks)
	}
	return c
}

// Engine matches input events against unjudged notes and sweeps out notes
// that scrolled past the miss boundary. The Chart itself is never mutated;
// the engine owns only its cursors, so several engines can judge the same
// chart concurrently (live run plus replay verification).
type Engine struct {
	chart   *chart.Chart
	window  Window
	cursors []int
	holds   []HoldState
	ahead   [][]bool // judged past a stale, not-yet-swept predecessor
	ghosts  int
	judged  int // note parts judged so far
}

// NewEngine creates a judging pass over the chart with the given window.
func NewEngine(c *chart.Chart, w Window) *Engine {
	e := &Engine{
		chart:   c,
		window:  w,
		cursors: make([]int, c.Keys()),
		holds:   make([]HoldState, c.Keys()),
		ahead:   make([][]bool, c.Keys()),
	}
	for col := range e.ahead {
		e.ahead[col] = make([]bool, len(c.Column(col)))
	}
	return e
}

// Window returns the active hit window.
func (e *Engine) Window() Window { return e.window }

// GhostTaps returns the number of presses that matched no note.
func (e *Engine) GhostTaps() int { return e.ghosts }

// Cursor returns the index of the first unjudged note in the column.
func (e *Engine) Cursor(col int) int { return e.cursors[col] }

// Hold returns the armed-hold state for the column.
func (e *Engine) Hold(col int) HoldState { return e.holds[col] }

// OnInput judges a single input event. A press returns at most one Head
// judgement; a release returns at most one Tail judgement. A press outside
// every note's widest window is a ghost tap: counted, but unjudged.
func (e *Engine) OnInput(ev core.InputEvent) (Judgement, bool) {
	if ev.Column < 0 || ev.Column >= e.chart.Keys() {
		return Judgement{}, false
	}
	if ev.Action == core.Release {
		return e.onRelease(ev)
	}
	return e.onPress(ev)
}

func (e *Engine) onPress(ev core.InputEvent) (Judgement, bool) {
	// The earliest hittable unjudged note in the column wins, never the
	// closest: in-column notes must be hit in chart order. Notes already
	// past the widest boundary are not candidates; they stay unjudged for
	// the sweep, so they never shadow a still-hittable successor.
	notes := e.chart.Column(ev.Column)
	stale := ev.Time - e.window.MissBoundary()
	idx := e.cursors[ev.Column]
	for idx < len(notes) && (e.ahead[ev.Column][idx] || notes[idx].Time < stale) {
		idx++
	}
	if idx >= len(notes) {
		e.ghosts++
		return Judgement{}, false
	}
	note := notes[idx]

	offset := ev.Time - note.Time
	tier, judgeable := e.window.Classify(offset)
	if !judgeable {
		e.ghosts++
		return Judgement{}, false
	}

	e.ahead[ev.Column][idx] = true
	e.settle(ev.Column)
	if note.IsHold() {
		e.holds[ev.Column] = HoldState{Active: true, NoteIndex: idx}
	}
	e.judged++
	return Judgement{
		Column:    ev.Column,
		NoteIndex: idx,
		Part:      Head,
		Tier:      tier,
		Offset:    offset,
		Time:      ev.Time,
	}, true
}

// settle moves the column cursor past every already-judged note, clearing
// the ahead marks it crosses. A mark survives the cursor only while a stale
// predecessor awaits its sweep.
func (e *Engine) settle(col int) {
	notes := e.chart.Column(col)
	for e.cursors[col] < len(notes) && e.ahead[col][e.cursors[col]] {
		e.ahead[col][e.cursors[col]] = false
		e.cursors[col]++
	}
}

func (e *Engine) onRelease(ev core.InputEvent) (Judgement, bool) {
	hold := e.holds[ev.Column]
	if !hold.Active {
		return Judgement{}, false
	}
	note := e.chart.Column(ev.Column)[hold.NoteIndex]
	offset := ev.Time - note.EndTime

	var tier Tier
	if offset < -e.window.MissBoundary() {
		// Let go before the tail window opened: explicit penalty tier,
		// distinct from a timely release.
		tier = EarlyRelease
	} else {
		tier, _ = e.window.Classify(offset)
	}

	e.holds[ev.Column] = HoldState{}
	e.judged++
	return Judgement{
		Column:    ev.Column,
		NoteIndex: hold.NoteIndex,
		Part:      Tail,
		Tier:      tier,
		Offset:    offset,
		Time:      ev.Time,
	}, true
}

// Sweep finalizes notes the player can no longer judge at the given time:
// unpressed heads past the miss boundary become Misses (hold heads miss both
// parts), and holds still armed at their end time complete with a timely
// tail. Returned judgements are ordered by note time, then column, so the
// score machine always consumes them in song-time order.
func (e *Engine) Sweep(now core.SongTime) []Judgement {
	var out []Judgement
	horizon := now - e.window.MissBoundary()

	for col := 0; col < e.chart.Keys(); col++ {
		// Completed holds: still armed, end time reached.
		if hold := e.holds[col]; hold.Active {
			note := e.chart.Column(col)[hold.NoteIndex]
			if now >= note.EndTime {
				tier, _ := e.window.Classify(0)
				out = append(out, Judgement{
					Column:    col,
					NoteIndex: hold.NoteIndex,
					Part:      Tail,
					Tier:      tier,
					Offset:    0,
					Time:      note.EndTime,
				})
				e.holds[col] = HoldState{}
				e.judged++
			}
		}

		// Unreached heads that fell behind the miss boundary. Ahead-judged
		// notes are not re-missed; the cursor settles past them.
		notes := e.chart.Column(col)
		for {
			e.settle(col)
			idx := e.cursors[col]
			if idx >= len(notes) || notes[idx].Time >= horizon {
				break
			}
			out = append(out, Judgement{
				Column:    col,
				NoteIndex: idx,
				Part:      Head,
				Tier:      Miss,
				Offset:    0,
				Time:      now,
			})
			e.judged++
			if notes[idx].IsHold() {
				// The tail can never be judged once the head is missed.
				out = append(out, Judgement{
					Column:    col,
					NoteIndex: idx,
					Part:      Tail,
					Tier:      Miss,
					Offset:    0,
					Time:      now,
				})
				e.judged++
			}
			e.cursors[col] = idx + 1
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// AllJudged reports whether every note part has received its judgement.
func (e *Engine) AllJudged() bool {
	for col := 0; col < e.chart.Keys(); col++ {
		if e.cursors[col] < len(e.chart.Column(col)) {
			return false
		}
		if e.holds[col].Active {
			return false
		}
	}
	return true
}

// JudgedParts returns how many note parts have been judged so far.
func (e *Engine) JudgedParts() int { return e.judged }

// State snapshots the judging pass for a checkpoint.
func (e *Engine) State() CursorState {
	return CursorState{
		Cursors:   e.cursors,
		Holds:     e.holds,
		Ahead:     e.ahead,
		GhostTaps: e.ghosts,
		Judged:    e.judged,
	}.Clone()
}

// Restore rolls the judging pass back to a previously captured state.
// Cursor reset is O(columns); the chart itself is untouched.
func (e *Engine) Restore(s CursorState) {
	c := s.Clone()
	e.cursors = c.Cursors
	e.holds = c.Holds
	e.ahead = c.Ahead
	e.ghosts = c.GhostTaps
	e.judged = c.Judged
}
