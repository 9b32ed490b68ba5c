package replay

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/engine"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/score"
)

func testChart(t *testing.T) *chart.Chart {
	t.Helper()
	c, err := chart.New(chart.Meta{Title: "replay test", Keys: 4}, []chart.Note{
		{Column: 0, Time: core.FromMillis(500)},
		{Column: 1, Time: core.FromMillis(800), EndTime: core.FromMillis(1300), Kind: chart.Hold},
		{Column: 2, Time: core.FromMillis(1000)},
		{Column: 3, Time: core.FromMillis(1600)},
	})
	if err != nil {
		t.Fatalf("chart.New: %v", err)
	}
	return c
}

func testOptions() engine.Options {
	return engine.Options{
		TickRate: 200,
		LeadIn:   core.FromMillis(10),
	}
}

// recordRun plays a scripted session through a recorded scheduler and
// returns the log plus the outcome.
func recordRun(t *testing.T, c *chart.Chart, script []core.InputEvent) (*Log, Result, []judge.Judgement) {
	t.Helper()
	opts := testOptions()
	opts.Rate = 1.0
	s := engine.New(c, judge.FromOsuOD(8), score.DefaultPolicy(), opts)

	rec := NewRecorder(c.Hash(), 1.0, judge.ModeOsuOD, 8)
	rec.Attach(s)

	done := make(chan engine.Summary, 1)
	s.OnFinish(func(sum engine.Summary) { done <- sum })
	s.Start()

	tick := opts.TickInterval()
	fed := 0
	for s.Status() != engine.Finished {
		now := s.Latest().Song
		for fed < len(script) && script[fed].Time <= now+tick {
			s.Push(script[fed])
			fed++
		}
		s.Advance(tick)
	}
	return rec.Log(), ResultOf(<-done), s.Journal()
}

func testScript() []core.InputEvent {
	return []core.InputEvent{
		{Time: core.FromMillis(497), Column: 0, Action: core.Press},
		{Time: core.FromMillis(812), Column: 1, Action: core.Press},
		{Time: core.FromMillis(1020), Column: 2, Action: core.Press},
		{Time: core.FromMillis(1290), Column: 1, Action: core.Release},
		// Ghost tap far from any column-0 note.
		{Time: core.FromMillis(1100), Column: 0, Action: core.Press},
		// Column 3 note is left to the sweep.
	}
}

func TestPlaybackReproducesRun(t *testing.T) {
	c := testChart(t)
	log, res, journal := recordRun(t, c, testScript())

	snap, replayed, err := NewPlayer(log).Run(c, score.DefaultPolicy(), testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if snap.Score.Score != res.Score || snap.Score.MaxCombo != res.MaxCombo {
		t.Errorf("replayed score %d/%d, recorded %d/%d",
			snap.Score.Score, snap.Score.MaxCombo, res.Score, res.MaxCombo)
	}
	if snap.GhostTaps != res.GhostTaps {
		t.Errorf("replayed ghost taps %d, recorded %d", snap.GhostTaps, res.GhostTaps)
	}
	if len(replayed) != len(journal) {
		t.Fatalf("journal lengths: replayed %d, recorded %d", len(replayed), len(journal))
	}
	for i := range journal {
		if replayed[i] != journal[i] {
			t.Errorf("judgement %d: replayed %+v, recorded %+v", i, replayed[i], journal[i])
		}
	}
}

func TestPlaybackIsBitIdentical(t *testing.T) {
	c := testChart(t)
	log, _, _ := recordRun(t, c, testScript())

	snapA, journalA, err := NewPlayer(log).Run(c, score.DefaultPolicy(), testOptions())
	if err != nil {
		t.Fatalf("first playback: %v", err)
	}
	snapB, journalB, err := NewPlayer(log).Run(c, score.DefaultPolicy(), testOptions())
	if err != nil {
		t.Fatalf("second playback: %v", err)
	}

	if snapA.Score != snapB.Score {
		t.Errorf("final states diverged:\n%+v\n%+v", snapA.Score, snapB.Score)
	}
	if len(journalA) != len(journalB) {
		t.Fatalf("journal lengths diverged: %d vs %d", len(journalA), len(journalB))
	}
	for i := range journalA {
		if journalA[i] != journalB[i] {
			t.Errorf("judgement %d diverged: %+v vs %+v", i, journalA[i], journalB[i])
		}
	}
}

func TestPlaybackWithRateChange(t *testing.T) {
	c := testChart(t)
	opts := testOptions()
	opts.Rate = 1.0
	s := engine.New(c, judge.FromOsuOD(8), score.DefaultPolicy(), opts)
	rec := NewRecorder(c.Hash(), 1.0, judge.ModeOsuOD, 8)
	rec.Attach(s)
	done := make(chan engine.Summary, 1)
	s.OnFinish(func(sum engine.Summary) { done <- sum })
	s.Start()

	tick := opts.TickInterval()
	changed := false
	for s.Status() != engine.Finished {
		if !changed && s.Latest().Song >= core.FromMillis(650) {
			s.SetRate(1.5)
			changed = true
		}
		s.Advance(tick)
	}
	log, res := rec.Log(), ResultOf(<-done)

	if len(log.RateChanges) != 1 || log.RateChanges[0].Rate != 1.5 {
		t.Fatalf("rate changes = %+v, expected one change to 1.5", log.RateChanges)
	}
	if err := Verify(c, log, res, score.DefaultPolicy()); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerifyDetectsDivergence(t *testing.T) {
	c := testChart(t)
	log, res, _ := recordRun(t, c, testScript())

	if err := Verify(c, log, res, score.DefaultPolicy()); err != nil {
		t.Fatalf("Verify on honest log: %v", err)
	}

	tampered := res
	tampered.Score += 1000
	err := Verify(c, log, tampered, score.DefaultPolicy())
	var div *DivergenceError
	if !errors.As(err, &div) {
		t.Fatalf("Verify on tampered result = %v, expected DivergenceError", err)
	}
	if div.Field != "score" {
		t.Errorf("divergence field = %q, expected score", div.Field)
	}
}

func TestPlayerRejectsWrongChart(t *testing.T) {
	c := testChart(t)
	other, err := chart.New(chart.Meta{Title: "other", Keys: 4}, []chart.Note{
		{Column: 0, Time: core.FromMillis(500)},
	})
	if err != nil {
		t.Fatalf("chart.New: %v", err)
	}

	log, _, _ := recordRun(t, c, testScript())
	if _, _, err := NewPlayer(log).Run(other, score.DefaultPolicy(), testOptions()); err == nil {
		t.Error("playing a log against the wrong chart should fail")
	}
}

func TestLogCodec(t *testing.T) {
	c := testChart(t)
	log, _, _ := recordRun(t, c, testScript())

	data, err := log.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ChartHash != log.ChartHash || len(decoded.Events) != len(log.Events) {
		t.Errorf("round trip lost data: %+v", decoded)
	}

	bad := []struct {
		name string
		data string
	}{
		{"garbage", "not json"},
		{"wrong version", `{"version":99,"chart_hash":"x","rate":1}`},
		{"no hash", `{"version":1,"rate":1}`},
		{"bad rate", `{"version":1,"chart_hash":"x","rate":0}`},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tc.data)); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}
