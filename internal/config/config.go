// Package config loads the game configuration: hit window selection,
// playback and engine pacing, scroll presentation, and the scoring policy.
package config

import (
	"fmt"

	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/engine"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/score"
)

// WindowConfig selects how hit window boundaries are derived.
type WindowConfig struct {
	Mode  string  `yaml:"mode"` // osu_od or etterna_judge
	Value float64 `yaml:"value"`
}

// PlaybackConfig controls the clock.
type PlaybackConfig struct {
	Rate     float64 `yaml:"rate"`
	LeadInMS int64   `yaml:"lead_in_ms"`
}

// EngineConfig controls the logic schedule.
type EngineConfig struct {
	TickRate        int   `yaml:"tick_rate"`
	ToleranceMS     int64 `yaml:"tolerance_ms"`
	LookaheadMS     int64 `yaml:"lookahead_ms"`
	FinishAfterMS   int64 `yaml:"finish_after_ms"`
	CheckpointGapMS int64 `yaml:"checkpoint_gap_ms"`
	RetryOffsetMS   int64 `yaml:"retry_offset_ms"`
}

// ScrollConfig controls note presentation only; it never affects judging.
type ScrollConfig struct {
	// Speed is lane rows per second at rate 1.0.
	Speed      int  `yaml:"speed"`
	Downscroll bool `yaml:"downscroll"`
}

// Config is the full game configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Playback PlaybackConfig `yaml:"playback"`
	Engine   EngineConfig   `yaml:"engine"`
	Scroll   ScrollConfig   `yaml:"scroll"`
	// Keys are the column key bindings, leftmost lane first. Charts with
	// more columns than keys are rejected at play time.
	Keys    []string     `yaml:"keys"`
	Scoring score.Policy `yaml:"scoring"`
}

// Validate rejects configs the engine cannot run with.
func (c Config) Validate() error {
	switch judge.WindowMode(c.Window.Mode) {
	case judge.ModeOsuOD, judge.ModeEtternaJudge:
	default:
		return fmt.Errorf("config: unknown window mode %q", c.Window.Mode)
	}
	if c.Playback.Rate < 0.5 || c.Playback.Rate > 2.0 {
		return fmt.Errorf("config: rate %v outside [0.5, 2.0]", c.Playback.Rate)
	}
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("config: tick rate must be positive")
	}
	if len(c.Keys) == 0 {
		return fmt.Errorf("config: no key bindings")
	}
	if c.Scroll.Speed <= 0 {
		return fmt.Errorf("config: scroll speed must be positive")
	}
	return nil
}

// JudgeWindow derives the hit window from the config.
func (c Config) JudgeWindow() judge.Window {
	return judge.FromMode(judge.WindowMode(c.Window.Mode), c.Window.Value)
}

// EngineOptions converts the config into scheduler options.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		TickRate:      c.Engine.TickRate,
		Rate:          c.Playback.Rate,
		Tolerance:     core.FromMillis(c.Engine.ToleranceMS),
		LeadIn:        core.FromMillis(c.Playback.LeadInMS),
		Lookahead:     core.FromMillis(c.Engine.LookaheadMS),
		FinishAfter:   core.FromMillis(c.Engine.FinishAfterMS),
		CheckpointGap: core.FromMillis(c.Engine.CheckpointGapMS),
		RetryOffset:   core.FromMillis(c.Engine.RetryOffsetMS),
	}
}
