package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the game configuration.
// Search order: customPath -> ~/.mania/configs/mania.yaml -> ./configs/mania.yaml -> embedded default
func Load(customPath string) (Config, error) {
	// Try custom path first; an explicit path that fails is an error.
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		return parse(data, customPath)
	}

	// Try user config directory
	if userCfgPath := userConfigPath("mania.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data, userCfgPath); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/mania.yaml"); err == nil {
		if cfg, err := parse(data, "configs/mania.yaml"); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	if cfg, err := parse(defaultManiaYAML, "embedded default"); err == nil {
		return cfg, nil
	}
	return DefaultConfig(), nil // Fallback to hardcoded if embed fails
}

// parse decodes YAML over the built-in defaults, so partial files only
// override what they mention.
func parse(data []byte, source string) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w (from %s)", err, source)
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mania", "configs", filename)
}
