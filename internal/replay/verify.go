package replay

import (
	"fmt"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/engine"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/score"
)

// Result is the recorded outcome of a run, persisted next to its log.
type Result struct {
	Score      int64
	MaxCombo   int
	TierCounts [judge.TierCount]int
	GhostTaps  int
}

// ResultOf extracts the comparable outcome from a run summary.
func ResultOf(sum engine.Summary) Result {
	return Result{
		Score:      sum.Score.Score,
		MaxCombo:   sum.Score.MaxCombo,
		TierCounts: sum.Score.TierCounts,
		GhostTaps:  sum.GhostTaps,
	}
}

// DivergenceError reports the first field where a playback disagreed with
// the recorded result. A log that diverges is stale, tampered with, or was
// recorded against a different policy.
type DivergenceError struct {
	Field    string
	Recorded string
	Replayed string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("replay: %s diverged: recorded %s, replayed %s",
		e.Field, e.Recorded, e.Replayed)
}

// Verify plays the log back against the chart and compares the outcome to
// the recorded result. A nil return means the log reproduces the result
// under the given policy.
func Verify(c *chart.Chart, log *Log, rec Result, policy score.Policy) error {
	snap, _, err := NewPlayer(log).Run(c, policy, engine.Options{})
	if err != nil {
		return err
	}

	got := Result{
		Score:      snap.Score.Score,
		MaxCombo:   snap.Score.MaxCombo,
		TierCounts: snap.Score.TierCounts,
		GhostTaps:  snap.GhostTaps,
	}
	if got.Score != rec.Score {
		return &DivergenceError{
			Field:    "score",
			Recorded: fmt.Sprint(rec.Score),
			Replayed: fmt.Sprint(got.Score),
		}
	}
	if got.MaxCombo != rec.MaxCombo {
		return &DivergenceError{
			Field:    "max combo",
			Recorded: fmt.Sprint(rec.MaxCombo),
			Replayed: fmt.Sprint(got.MaxCombo),
		}
	}
	if got.TierCounts != rec.TierCounts {
		return &DivergenceError{
			Field:    "tier counts",
			Recorded: fmt.Sprint(rec.TierCounts),
			Replayed: fmt.Sprint(got.TierCounts),
		}
	}
	if got.GhostTaps != rec.GhostTaps {
		return &DivergenceError{
			Field:    "ghost taps",
			Recorded: fmt.Sprint(rec.GhostTaps),
			Replayed: fmt.Sprint(got.GhostTaps),
		}
	}
	return nil
}
