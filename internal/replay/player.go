package replay

import (
	"fmt"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/engine"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/score"
)

// Player drives a fresh scheduler from a log. It is the run's exclusive
// input source: the clock follows the recorded rate schedule with no audio
// feed, so the song timeline is fully determined by the log and two
// playbacks of the same log are bit-identical.
type Player struct {
	log *Log
}

// NewPlayer wraps a decoded log.
func NewPlayer(log *Log) *Player {
	return &Player{log: log}
}

// Run plays the log against the chart to completion and returns the final
// snapshot and the full judgement journal. opts overrides engine pacing for
// tests; the rate and hit window always come from the log.
func (p *Player) Run(c *chart.Chart, policy score.Policy, opts engine.Options) (*engine.Snapshot, []judge.Judgement, error) {
	if p.log.ChartHash != c.Hash() {
		return nil, nil, fmt.Errorf("replay: log is for chart %s, not %s", p.log.ChartHash, c.Hash())
	}

	opts.Rate = p.log.Rate
	if opts.TickRate <= 0 {
		opts.TickRate = engine.DefaultTickRate
	}
	window := judge.FromMode(judge.WindowMode(p.log.WindowMode), p.log.WindowValue)
	s := engine.New(c, window, policy, opts)
	s.Start()

	tick := opts.TickInterval()
	events, rates := p.log.Events, p.log.RateChanges
	ei, ri := 0, 0

	// Ticker-free fast-forward: events enter the queue on the tick whose
	// window covers their recorded song time, rate changes apply once the
	// clock reaches theirs. The run always terminates because the finish
	// condition depends only on judged notes and the clock, which this
	// loop advances unconditionally.
	for s.Status() != engine.Finished {
		now := s.Latest().Song
		for ri < len(rates) && rates[ri].Time <= now {
			s.SetRate(rates[ri].Rate)
			ri++
		}
		for ei < len(events) && events[ei].Time <= now+tick {
			s.Push(core.InputEvent{
				Time:   events[ei].Time,
				Column: events[ei].Column,
				Action: events[ei].Action,
			})
			ei++
		}
		s.Advance(tick)
	}

	return s.Latest(), s.Journal(), nil
}
