package config

// DifficultyPreset names a hit window preset selectable from the CLI.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyExpert DifficultyPreset = "expert"
)

// ApplyPreset overrides the configured hit window with a preset. Unknown
// presets leave the config untouched.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Window = WindowConfig{Mode: "osu_od", Value: 5}
	case DifficultyNormal:
		cfg.Window = WindowConfig{Mode: "osu_od", Value: 8}
	case DifficultyHard:
		cfg.Window = WindowConfig{Mode: "osu_od", Value: 10}
	case DifficultyExpert:
		cfg.Window = WindowConfig{Mode: "etterna_judge", Value: 7}
	}
}
