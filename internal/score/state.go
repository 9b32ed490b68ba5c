package score

import "github.com/vovakirdan/tui-mania/internal/judge"

// State is the combo/accuracy/score accumulator. It is a value type:
// Apply returns a new State, which makes checkpointing a plain copy.
type State struct {
	Combo       int
	MaxCombo    int
	TotalJudged int
	TierCounts  [judge.TierCount]int
	Score       int64
	Accuracy    float64 // percentage, display only
}

// NewState returns the zero accumulator.
func NewState() State {
	return State{}
}

// Apply folds one judgement into the state. Transitions are order-dependent:
// the combo multiplier uses the combo value before this judgement, so the
// same judgement at a different combo yields a different score. rate is the
// playback rate active at the moment of judgement.
func (p Policy) Apply(s State, j judge.Judgement, rate float64) State {
	s.TierCounts[j.Tier]++
	s.TotalJudged++

	if j.Tier == judge.Miss {
		s.Combo = 0
	} else {
		perNote := p.tierWeight(j.Tier)
		perNote = perNote * p.comboPercent(s.Combo) / 100
		perNote = perNote * p.ratePercent(rate) / 100
		s.Score += perNote

		s.Combo++
		if s.Combo > s.MaxCombo {
			s.MaxCombo = s.Combo
		}
	}

	s.Accuracy = p.accuracy(s.TierCounts)
	return s
}

// accuracy recomputes the running weighted average over tier counts.
func (p Policy) accuracy(counts [judge.TierCount]int) float64 {
	maxW := p.maxAccuracyWeight()
	if maxW == 0 {
		return 0
	}
	var total, earned int64
	for tier := 0; tier < judge.TierCount; tier++ {
		n := int64(counts[tier])
		if n == 0 {
			continue
		}
		total += n
		earned += n * p.accuracyWeight(judge.Tier(tier))
	}
	if total == 0 {
		return 0
	}
	return float64(earned) / float64(total*maxW) * 100.0
}
