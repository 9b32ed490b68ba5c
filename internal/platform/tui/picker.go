package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/storage"
)

// PickerItem is one selectable chart in the picker.
type PickerItem struct {
	Path   string
	Meta   chart.Meta
	Best   int64
	Played int
}

// PickerModel is the Bubble Tea model for the chart picker.
type PickerModel struct {
	items          []PickerItem
	cursor         int
	width          int
	height         int
	quitting       bool
	selected       *PickerItem
	practice       bool
	openScoreboard bool
}

// NewPickerModel scans dir for chart files and annotates each with its saved
// stats. Unparseable files are skipped, not fatal.
func NewPickerModel(dir string, store *storage.Store) (PickerModel, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return PickerModel{}, fmt.Errorf("scan charts in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return PickerModel{}, fmt.Errorf("no charts found in %s", dir)
	}
	sort.Strings(paths)

	items := make([]PickerItem, 0, len(paths))
	for _, path := range paths {
		c, err := chart.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
			continue
		}
		item := PickerItem{Path: path, Meta: c.Meta()}
		if store != nil {
			if stats, err := store.GetChartStats(c.Hash()); err == nil {
				item.Best = stats.BestScore
				item.Played = stats.RunCount
			}
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return PickerModel{}, fmt.Errorf("no playable charts in %s", dir)
	}

	return PickerModel{items: items, width: 80, height: 24}, nil
}

// Init initializes the picker model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the picker.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "enter":
		selected := m.items[m.cursor]
		m.selected = &selected
		return m, tea.Quit

	case "p":
		selected := m.items[m.cursor]
		m.selected = &selected
		m.practice = true
		return m, tea.Quit

	case "tab":
		m.openScoreboard = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the picker.
func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "  M A N I A  "
	b.WriteString("\n")
	b.WriteString(centerText(title, m.width))
	b.WriteString("\n\n")

	subtitle := "Select a chart"
	b.WriteString(centerText(subtitle, m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		label := fmt.Sprintf("%s%s - %s [%dK]", cursor, item.Meta.Artist, item.Meta.Title, item.Meta.Keys)
		if item.Played > 0 {
			label += fmt.Sprintf("  best %d (%d plays)", item.Best, item.Played)
		}
		b.WriteString(centerText(label, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  P: Practice  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the chosen chart, or nil if none was selected.
func (m PickerModel) Selected() *PickerItem {
	return m.selected
}

// PracticeMode returns true if the chart was selected for practice.
func (m PickerModel) PracticeMode() bool {
	return m.practice
}

// IsQuitting returns true if user requested to quit.
func (m PickerModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested the scoreboard.
func (m PickerModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// PickerResult holds the result of running the picker.
type PickerResult struct {
	Path            string
	Practice        bool
	WantsScoreboard bool
	Quit            bool
}

// RunPicker runs the chart picker and returns the selection result.
func RunPicker(dir string, store *storage.Store) (PickerResult, error) {
	model, err := NewPickerModel(dir, store)
	if err != nil {
		return PickerResult{}, err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	m, ok := finalModel.(PickerModel)
	if !ok {
		return PickerResult{Quit: true}, nil
	}

	result := PickerResult{}

	if m.WantsScoreboard() {
		result.WantsScoreboard = true
		return result, nil
	}

	if m.IsQuitting() {
		result.Quit = true
		return result, nil
	}

	if sel := m.Selected(); sel != nil {
		result.Path = sel.Path
		result.Practice = m.PracticeMode()
	} else {
		result.Quit = true
	}

	return result, nil
}
