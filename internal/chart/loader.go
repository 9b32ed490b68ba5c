package chart

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-mania/internal/core"
)

// yamlChart is the on-disk structure for a finalized note list. This is not
// a beatmap-format parser; conversion from osu!/sm files happens in a
// separate tool and produces these files.
type yamlChart struct {
	Title  string     `yaml:"title"`
	Artist string     `yaml:"artist"`
	Keys   int        `yaml:"keys"`
	BPM    float64    `yaml:"bpm"`
	Notes  []yamlNote `yaml:"notes"`
}

// yamlNote uses millisecond offsets, matching what chart converters emit.
type yamlNote struct {
	Col int   `yaml:"col"`
	T   int64 `yaml:"t"`
	End int64 `yaml:"end,omitempty"`
}

// Parse decodes a YAML note list and builds a validated Chart.
func Parse(data []byte) (*Chart, error) {
	var yc yamlChart
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("chart: yaml unmarshal: %w", err)
	}

	notes := make([]Note, 0, len(yc.Notes))
	for _, yn := range yc.Notes {
		n := Note{
			Column: yn.Col,
			Time:   core.FromMillis(yn.T),
			Kind:   Tap,
		}
		if yn.End != 0 {
			n.Kind = Hold
			n.EndTime = core.FromMillis(yn.End)
		}
		notes = append(notes, n)
	}

	meta := Meta{
		Title:  yc.Title,
		Artist: yc.Artist,
		Keys:   yc.Keys,
		BPM:    yc.BPM,
	}
	return New(meta, notes)
}

// LoadFile reads and parses a chart file from disk.
func LoadFile(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chart: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("chart: parse %s: %w", path, err)
	}
	return c, nil
}
