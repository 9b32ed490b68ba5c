package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaultMatchesHardcoded(t *testing.T) {
	cfg, err := parse(defaultManiaYAML, "embedded")
	if err != nil {
		t.Fatalf("embedded default does not parse: %v", err)
	}
	want := DefaultConfig()
	if cfg.Window != want.Window {
		t.Errorf("window = %+v, expected %+v", cfg.Window, want.Window)
	}
	if cfg.Engine != want.Engine {
		t.Errorf("engine = %+v, expected %+v", cfg.Engine, want.Engine)
	}
	if cfg.Scoring.RateBonusPercent != want.Scoring.RateBonusPercent {
		t.Errorf("rate bonus = %d, expected %d",
			cfg.Scoring.RateBonusPercent, want.Scoring.RateBonusPercent)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mania.yaml")
	body := `
window:
  mode: etterna_judge
  value: 6
playback:
  rate: 1.2
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Mode != "etterna_judge" || cfg.Window.Value != 6 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Playback.Rate != 1.2 {
		t.Errorf("rate = %v, expected 1.2", cfg.Playback.Rate)
	}
	// Unmentioned sections keep their defaults.
	if cfg.Engine.TickRate != 200 {
		t.Errorf("tick rate = %d, expected default 200", cfg.Engine.TickRate)
	}
	if len(cfg.Keys) != 4 {
		t.Errorf("keys = %v, expected default bindings", cfg.Keys)
	}
}

func TestLoadMissingCustomPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("explicit missing path should fail, not fall through")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"bad mode", func(c *Config) { c.Window.Mode = "guitar_hero" }, false},
		{"rate too high", func(c *Config) { c.Playback.Rate = 2.5 }, false},
		{"rate too low", func(c *Config) { c.Playback.Rate = 0.25 }, false},
		{"zero tick rate", func(c *Config) { c.Engine.TickRate = 0 }, false},
		{"no keys", func(c *Config) { c.Keys = nil }, false},
		{"zero scroll", func(c *Config) { c.Scroll.Speed = 0 }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); (err == nil) != tc.ok {
				t.Errorf("Validate() = %v, expected ok=%v", err, tc.ok)
			}
		})
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	ApplyPreset(&cfg, DifficultyExpert)
	if cfg.Window.Mode != "etterna_judge" || cfg.Window.Value != 7 {
		t.Errorf("expert preset = %+v", cfg.Window)
	}

	before := cfg.Window
	ApplyPreset(&cfg, "unknown")
	if cfg.Window != before {
		t.Error("unknown preset must not modify the config")
	}
}
