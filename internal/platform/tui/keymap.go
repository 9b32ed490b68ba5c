package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// PlayKeyMap defines the non-lane key bindings during a run. Lane keys come
// from the config and are matched by string.
type PlayKeyMap struct {
	Pause    key.Binding
	RateUp   key.Binding
	RateDown key.Binding
	Mark     key.Binding
	Restore  key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k PlayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Mark, k.Restore, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k PlayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.RateUp, k.RateDown},
		{k.Mark, k.Restore},
		{k.Back, k.Quit},
	}
}

// DefaultPlayKeyMap returns default key bindings.
func DefaultPlayKeyMap() PlayKeyMap {
	return PlayKeyMap{
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		RateUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "rate up"),
		),
		RateDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "rate down"),
		),
		Mark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "checkpoint"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry from checkpoint"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// laneIndex maps a pressed key to a lane column, or -1.
func laneIndex(keys []string, pressed string) int {
	for i, k := range keys {
		if k == pressed {
			return i
		}
	}
	return -1
}
