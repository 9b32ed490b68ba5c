package judge

import (
	"testing"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/core"
)

func mustChart(t *testing.T, notes []chart.Note) *chart.Chart {
	t.Helper()
	c, err := chart.New(chart.Meta{Title: "test", Keys: 4, BPM: 120}, notes)
	if err != nil {
		t.Fatalf("chart.New() failed: %v", err)
	}
	return c
}

func press(col int, ms int64) core.InputEvent {
	return core.InputEvent{Time: core.FromMillis(ms), Column: col, Action: core.Press}
}

func release(col int, ms int64) core.InputEvent {
	return core.InputEvent{Time: core.FromMillis(ms), Column: col, Action: core.Release}
}

// Scenario from the scoring design: single tap at 1000ms, Great within
// ±50ms, widest boundary ±100ms.
func scenarioWindow() Window {
	return FromCustom(10, 30, 50, 75, 90, 100)
}

func TestPressWithinWindow(t *testing.T) {
	c := mustChart(t, []chart.Note{{Column: 0, Time: core.FromMillis(1000)}})
	e := NewEngine(c, scenarioWindow())

	j, ok := e.OnInput(press(0, 1005))
	if !ok {
		t.Fatal("press at 1005ms should judge the note")
	}
	if j.Tier != Marvelous && j.Tier != Perfect && j.Tier != Great {
		t.Errorf("5ms offset got %s", j.Tier)
	}
	if j.Offset != core.FromMillis(5) {
		t.Errorf("Offset = %s, expected +5ms", j.Offset)
	}
	if j.Part != Head || j.Column != 0 || j.NoteIndex != 0 {
		t.Errorf("judgement = %+v", j)
	}
	if !e.AllJudged() {
		t.Error("single tap should leave the pass fully judged")
	}
}

func TestPressOutsideWindowIsGhostTap(t *testing.T) {
	c := mustChart(t, []chart.Note{{Column: 0, Time: core.FromMillis(1000)}})
	e := NewEngine(c, scenarioWindow())

	if _, ok := e.OnInput(press(0, 1200)); ok {
		t.Fatal("press at 1200ms is outside every boundary and must not judge")
	}
	if e.GhostTaps() != 1 {
		t.Errorf("GhostTaps() = %d, expected 1", e.GhostTaps())
	}

	// The note is still unjudged; the sweep at 1101ms misses it.
	judgements := e.Sweep(core.FromMillis(1101))
	if len(judgements) != 1 || judgements[0].Tier != Miss {
		t.Fatalf("Sweep(1101ms) = %+v, expected one Miss", judgements)
	}
	if !e.AllJudged() {
		t.Error("pass should be fully judged after the sweep")
	}
}

func TestSweepDoesNotMissJudgeableNotes(t *testing.T) {
	c := mustChart(t, []chart.Note{{Column: 0, Time: core.FromMillis(1000)}})
	e := NewEngine(c, scenarioWindow())

	if judgements := e.Sweep(core.FromMillis(1100)); len(judgements) != 0 {
		t.Errorf("Sweep(1100ms) judged %+v while the note was still hittable", judgements)
	}
}

func TestEarliestNoteWinsNotClosest(t *testing.T) {
	// Two notes in one column 60ms apart; a press lands closer to the
	// second, but the first is still inside the widest boundary, so chart
	// order wins.
	c := mustChart(t, []chart.Note{
		{Column: 1, Time: core.FromMillis(1000)},
		{Column: 1, Time: core.FromMillis(1060)},
	})
	e := NewEngine(c, scenarioWindow())

	j, ok := e.OnInput(press(1, 1055))
	if !ok {
		t.Fatal("press should judge a note")
	}
	if j.NoteIndex != 0 {
		t.Errorf("press judged note %d, expected the earliest (0)", j.NoteIndex)
	}

	// Next press takes the second note.
	j, ok = e.OnInput(press(1, 1062))
	if !ok || j.NoteIndex != 1 {
		t.Errorf("second press = %+v ok=%v, expected note 1", j, ok)
	}
}

func TestStaleNoteDoesNotShadowHittableSuccessor(t *testing.T) {
	// The first note is already past the widest boundary when the press
	// arrives (1105 - 100 > 1000) but has not been swept yet. It must not
	// block the second note, which the press lands squarely on.
	c := mustChart(t, []chart.Note{
		{Column: 0, Time: core.FromMillis(1000)},
		{Column: 0, Time: core.FromMillis(1100)},
	})
	e := NewEngine(c, scenarioWindow())

	j, ok := e.OnInput(press(0, 1105))
	if !ok {
		t.Fatalf("press inside note 1's window should judge it, got ghost (ghosts=%d)", e.GhostTaps())
	}
	if j.NoteIndex != 1 {
		t.Errorf("press judged note %d, expected 1", j.NoteIndex)
	}
	if j.Offset != core.FromMillis(5) {
		t.Errorf("Offset = %s, expected +5ms", j.Offset)
	}
	if e.GhostTaps() != 0 {
		t.Errorf("GhostTaps() = %d, expected 0", e.GhostTaps())
	}

	// The stale note falls to the sweep, and only it.
	judgements := e.Sweep(core.FromMillis(1105))
	if len(judgements) != 1 {
		t.Fatalf("Sweep = %+v, expected one Miss for the stale note", judgements)
	}
	if judgements[0].NoteIndex != 0 || judgements[0].Tier != Miss {
		t.Errorf("swept judgement = %+v, expected note 0 Miss", judgements[0])
	}
	if !e.AllJudged() {
		t.Error("pass should be fully judged")
	}
}

func TestStaleSkipLeavesGhostWhenNoCandidate(t *testing.T) {
	// Both notes unhittable: one stale, one far in the future. The press is
	// a ghost tap and neither cursor moves.
	c := mustChart(t, []chart.Note{
		{Column: 0, Time: core.FromMillis(1000)},
		{Column: 0, Time: core.FromMillis(1500)},
	})
	e := NewEngine(c, scenarioWindow())

	if _, ok := e.OnInput(press(0, 1200)); ok {
		t.Fatal("press outside both windows must not judge")
	}
	if e.GhostTaps() != 1 {
		t.Errorf("GhostTaps() = %d, expected 1", e.GhostTaps())
	}
	if e.Cursor(0) != 0 {
		t.Errorf("Cursor(0) = %d, ghost tap must not consume notes", e.Cursor(0))
	}

	// The second note is still hittable on time.
	j, ok := e.OnInput(press(0, 1500))
	if !ok || j.NoteIndex != 1 {
		t.Errorf("press at 1500ms = %+v ok=%v, expected note 1", j, ok)
	}
}

func TestHoldHeadAndTimelyRelease(t *testing.T) {
	c := mustChart(t, []chart.Note{
		{Column: 1, Time: core.FromMillis(2000), EndTime: core.FromMillis(2500), Kind: chart.Hold},
	})
	e := NewEngine(c, scenarioWindow())

	head, ok := e.OnInput(press(1, 2005))
	if !ok || head.Part != Head {
		t.Fatalf("hold head = %+v ok=%v", head, ok)
	}
	if e.AllJudged() {
		t.Error("tail still pending, pass must not be fully judged")
	}

	tail, ok := e.OnInput(release(1, 2490))
	if !ok || tail.Part != Tail {
		t.Fatalf("hold tail = %+v ok=%v", tail, ok)
	}
	if tail.Tier == EarlyRelease || tail.Tier == Miss {
		t.Errorf("timely release judged %s", tail.Tier)
	}
	if tail.Offset != core.FromMillis(-10) {
		t.Errorf("tail offset = %s, expected -10ms", tail.Offset)
	}
	if !e.AllJudged() {
		t.Error("pass should be fully judged after the tail")
	}
}

func TestHoldEarlyReleasePenalty(t *testing.T) {
	c := mustChart(t, []chart.Note{
		{Column: 1, Time: core.FromMillis(2000), EndTime: core.FromMillis(2500), Kind: chart.Hold},
	})
	e := NewEngine(c, scenarioWindow())

	if _, ok := e.OnInput(press(1, 2005)); !ok {
		t.Fatal("head press should judge")
	}
	tail, ok := e.OnInput(release(1, 2200))
	if !ok {
		t.Fatal("release should judge the armed tail")
	}
	if tail.Tier != EarlyRelease {
		t.Errorf("release 300ms before the tail = %s, expected EarlyRelease", tail.Tier)
	}
}

func TestHoldCompletedBySweep(t *testing.T) {
	c := mustChart(t, []chart.Note{
		{Column: 0, Time: core.FromMillis(2000), EndTime: core.FromMillis(2500), Kind: chart.Hold},
	})
	e := NewEngine(c, scenarioWindow())

	if _, ok := e.OnInput(press(0, 2000)); !ok {
		t.Fatal("head press should judge")
	}

	// Player keeps holding past the end: sweep completes the tail.
	judgements := e.Sweep(core.FromMillis(2500))
	if len(judgements) != 1 {
		t.Fatalf("Sweep = %+v, expected one tail judgement", judgements)
	}
	if judgements[0].Part != Tail || judgements[0].Tier != Marvelous {
		t.Errorf("completed hold tail = %+v, expected timely Marvelous", judgements[0])
	}
}

func TestMissedHoldJudgesBothParts(t *testing.T) {
	c := mustChart(t, []chart.Note{
		{Column: 3, Time: core.FromMillis(1000), EndTime: core.FromMillis(1400), Kind: chart.Hold},
	})
	e := NewEngine(c, scenarioWindow())

	judgements := e.Sweep(core.FromMillis(5000))
	if len(judgements) != 2 {
		t.Fatalf("Sweep = %+v, expected head and tail misses", judgements)
	}
	for _, j := range judgements {
		if j.Tier != Miss {
			t.Errorf("missed hold part %s = %s", j.Part, j.Tier)
		}
	}
	if !e.AllJudged() {
		t.Error("pass should be fully judged")
	}
}

func TestEveryNoteJudgedUnderZeroInput(t *testing.T) {
	notes := []chart.Note{
		{Column: 0, Time: core.FromMillis(500)},
		{Column: 1, Time: core.FromMillis(700), EndTime: core.FromMillis(900), Kind: chart.Hold},
		{Column: 2, Time: core.FromMillis(800)},
		{Column: 0, Time: core.FromMillis(1200)},
	}
	c := mustChart(t, notes)
	e := NewEngine(c, scenarioWindow())

	// Sweep tick by tick; every note must be judged exactly once
	// (twice for the hold).
	total := 0
	for ms := int64(0); ms <= 3000; ms += 5 {
		total += len(e.Sweep(core.FromMillis(ms)))
	}
	if total != 5 {
		t.Errorf("judged %d parts under zero input, expected 5", total)
	}
	if !e.AllJudged() {
		t.Error("pass should be fully judged")
	}
}

func TestSweepOrderIsDeterministic(t *testing.T) {
	notes := []chart.Note{
		{Column: 2, Time: core.FromMillis(500)},
		{Column: 0, Time: core.FromMillis(500)},
		{Column: 1, Time: core.FromMillis(400)},
	}
	run := func() []Judgement {
		e := NewEngine(mustChart(t, notes), scenarioWindow())
		return e.Sweep(core.FromMillis(2000))
	}

	a, b := run(), run()
	if len(a) != 3 || len(b) != 3 {
		t.Fatalf("sweeps judged %d and %d parts", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("sweep order diverged at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
	// Columns tie-break ascending when judged at the same time.
	if a[0].Column != 0 && a[1].Column != 1 {
		t.Logf("order: %+v", a)
	}
}

func TestCursorStateRoundTrip(t *testing.T) {
	c := mustChart(t, []chart.Note{
		{Column: 0, Time: core.FromMillis(1000)},
		{Column: 0, Time: core.FromMillis(2000)},
		{Column: 1, Time: core.FromMillis(1500), EndTime: core.FromMillis(1900), Kind: chart.Hold},
	})
	e := NewEngine(c, scenarioWindow())

	e.OnInput(press(0, 1005))
	e.OnInput(press(1, 1500))
	saved := e.State()

	// Play past the saved point.
	e.OnInput(release(1, 1900))
	e.OnInput(press(0, 2010))
	if !e.AllJudged() {
		t.Fatal("setup should judge everything")
	}

	e.Restore(saved)
	if e.AllJudged() {
		t.Error("restore should make future notes judgeable again")
	}

	// The hold is armed again and the remaining tap judges again.
	tail, ok := e.OnInput(release(1, 1900))
	if !ok || tail.Part != Tail {
		t.Errorf("post-restore release = %+v ok=%v", tail, ok)
	}
	head, ok := e.OnInput(press(0, 2000))
	if !ok || head.NoteIndex != 1 {
		t.Errorf("post-restore press = %+v ok=%v", head, ok)
	}
	if !e.AllJudged() {
		t.Error("pass should be fully judged after replaying the rest")
	}
}
