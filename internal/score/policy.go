// Package score maintains combo, accuracy, and score as judgements arrive.
// All scaling formulas live in a Policy value loaded from configuration;
// nothing here hardcodes balance decisions.
package score

import "github.com/vovakirdan/tui-mania/internal/judge"

// ComboStep is one entry of the combo multiplier table: from MinCombo
// onward the per-note score is scaled by Percent.
type ComboStep struct {
	MinCombo int   `yaml:"min_combo"`
	Percent  int64 `yaml:"percent"`
}

// Policy holds every tunable of the state machine. All score math is
// integer arithmetic so the same judgement sequence always produces the
// same score.
type Policy struct {
	// TierWeights is the base per-note score by tier.
	TierWeights map[string]int64 `yaml:"tier_weights"`
	// AccuracyWeights feeds the running weighted accuracy average.
	AccuracyWeights map[string]int64 `yaml:"accuracy_weights"`
	// ComboSteps must be ordered by ascending MinCombo; the last step whose
	// MinCombo is <= the combo value before this judgement applies.
	ComboSteps []ComboStep `yaml:"combo_steps"`
	// RateBonusPercent is the extra score percentage granted per +1.0 of
	// playback rate above 1.0 (negative rates below 1.0 reduce score).
	RateBonusPercent int64 `yaml:"rate_bonus_percent"`
}

// DefaultPolicy mirrors the classic table: Marvelous and Perfect score
// alike, accuracy on the 6/4/2/1 scale, a mild stepped combo bonus, and
// +50% score at double rate.
func DefaultPolicy() Policy {
	return Policy{
		TierWeights: map[string]int64{
			judge.Marvelous.String():    300,
			judge.Perfect.String():      300,
			judge.Great.String():        200,
			judge.Good.String():         100,
			judge.Bad.String():          50,
			judge.EarlyRelease.String(): 50,
			judge.Miss.String():         0,
		},
		AccuracyWeights: map[string]int64{
			judge.Marvelous.String():    6,
			judge.Perfect.String():      6,
			judge.Great.String():        4,
			judge.Good.String():         2,
			judge.Bad.String():          1,
			judge.EarlyRelease.String(): 1,
			judge.Miss.String():         0,
		},
		ComboSteps: []ComboStep{
			{MinCombo: 0, Percent: 100},
			{MinCombo: 25, Percent: 105},
			{MinCombo: 100, Percent: 110},
			{MinCombo: 250, Percent: 120},
		},
		RateBonusPercent: 50,
	}
}

// tierWeight looks up the score weight for a tier, defaulting to zero.
func (p Policy) tierWeight(t judge.Tier) int64 {
	return p.TierWeights[t.String()]
}

// accuracyWeight looks up the accuracy weight for a tier.
func (p Policy) accuracyWeight(t judge.Tier) int64 {
	return p.AccuracyWeights[t.String()]
}

// maxAccuracyWeight is the denominator unit of the accuracy average.
func (p Policy) maxAccuracyWeight() int64 {
	var max int64
	for _, w := range p.AccuracyWeights {
		if w > max {
			max = w
		}
	}
	return max
}

// comboPercent returns the score multiplier (in percent) for the combo
// value held before the incoming judgement.
func (p Policy) comboPercent(combo int) int64 {
	percent := int64(100)
	for _, step := range p.ComboSteps {
		if combo >= step.MinCombo {
			percent = step.Percent
		}
	}
	return percent
}

// ratePercent converts a playback rate into a score multiplier (percent).
// The float multiply happens once per judgement and rounds to an integer,
// so the result is reproducible.
func (p Policy) ratePercent(rate float64) int64 {
	bonus := (rate - 1.0) * float64(p.RateBonusPercent)
	if bonus < 0 {
		return 100 + int64(bonus-0.5)
	}
	return 100 + int64(bonus+0.5)
}
