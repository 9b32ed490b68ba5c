package config

import (
	_ "embed"

	"github.com/vovakirdan/tui-mania/internal/score"
)

//go:embed defaults/mania.yaml
var defaultManiaYAML []byte

// DefaultConfig returns the built-in configuration, used when no YAML can
// be read at all.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Mode:  "osu_od",
			Value: 8,
		},
		Playback: PlaybackConfig{
			Rate:     1.0,
			LeadInMS: 3000,
		},
		Engine: EngineConfig{
			TickRate:        200,
			ToleranceMS:     200,
			LookaheadMS:     5000,
			FinishAfterMS:   2000,
			CheckpointGapMS: 15000,
			RetryOffsetMS:   1000,
		},
		Scroll: ScrollConfig{
			Speed:      25,
			Downscroll: true,
		},
		Keys:    []string{"d", "f", "j", "k"},
		Scoring: score.DefaultPolicy(),
	}
}

// GetDefaultYAML returns the embedded default configuration file, for
// `mania charts init`-style scaffolding.
func GetDefaultYAML() []byte {
	return defaultManiaYAML
}
