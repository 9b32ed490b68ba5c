package replay

import (
	"sync"

	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/engine"
	"github.com/vovakirdan/tui-mania/internal/judge"
)

// Recorder taps a scheduler's judged inputs and applied rate changes as they
// happen. It never touches the scoring path: events are captured after the
// drain, in exactly the order the judge consumed them.
type Recorder struct {
	mu  sync.Mutex
	log Log
}

// NewRecorder starts a log for one run.
func NewRecorder(chartHash string, rate float64, mode judge.WindowMode, value float64) *Recorder {
	return &Recorder{
		log: Log{
			Version:     Version,
			ChartHash:   chartHash,
			Rate:        rate,
			WindowMode:  string(mode),
			WindowValue: value,
		},
	}
}

// Attach hooks the recorder into the scheduler's taps.
func (r *Recorder) Attach(s *engine.Scheduler) {
	s.OnEvent(r.onEvent)
	s.OnRateChange(r.onRateChange)
}

func (r *Recorder) onEvent(ev core.InputEvent) {
	r.mu.Lock()
	r.log.Events = append(r.log.Events, Event{
		Time:   ev.Time,
		Column: ev.Column,
		Action: ev.Action,
	})
	r.mu.Unlock()
}

func (r *Recorder) onRateChange(at core.SongTime, rate float64) {
	r.mu.Lock()
	r.log.RateChanges = append(r.log.RateChanges, RateChange{Time: at, Rate: rate})
	r.mu.Unlock()
}

// Log returns a copy of the recording so far. Safe to call after the run
// from the persistence callback's goroutine.
func (r *Recorder) Log() *Log {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.log
	out.Events = append([]Event(nil), r.log.Events...)
	out.RateChanges = append([]RateChange(nil), r.log.RateChanges...)
	return &out
}
