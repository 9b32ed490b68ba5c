package tui

import (
	"fmt"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/config"
	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/engine"
)

const (
	laneInnerWidth = 3
	// flashDurationMS is how long the last judgement stays on screen,
	// in ms of song time.
	flashDurationMS = 600
)

// Playfield draws snapshots into a screen buffer. It is pure presentation:
// nothing here feeds back into the engine.
type Playfield struct {
	meta   chart.Meta
	scroll config.ScrollConfig
	keys   []string
}

// NewPlayfield creates a renderer for one chart.
func NewPlayfield(meta chart.Meta, scroll config.ScrollConfig, keys []string) *Playfield {
	return &Playfield{meta: meta, scroll: scroll, keys: keys}
}

func (p *Playfield) laneLeft(s *core.Screen) int {
	total := p.meta.Keys*(laneInnerWidth+1) + 1
	left := (s.Width() - total) / 2
	if left < 0 {
		left = 0
	}
	return left
}

func (p *Playfield) receptorRow(s *core.Screen) int {
	if p.scroll.Downscroll {
		return s.Height() - 3
	}
	return 2
}

// noteRow converts a note time into a screen row relative to the receptor.
// Scroll speed is presentation only; judging never sees it.
func (p *Playfield) noteRow(s *core.Screen, now, t core.SongTime) int {
	dy := int(int64(t-now) * int64(p.scroll.Speed) / 1_000_000)
	if p.scroll.Downscroll {
		return p.receptorRow(s) - dy
	}
	return p.receptorRow(s) + dy
}

// Draw renders one snapshot.
func (p *Playfield) Draw(s *core.Screen, snap *engine.Snapshot, held []bool) {
	s.Clear()
	p.drawLanes(s, held)
	p.drawNotes(s, snap)
	p.drawHUD(s, snap)
	p.drawFlash(s, snap)

	switch snap.Status {
	case engine.Paused:
		s.DrawTextCentered(s.Height()/2, "         ")
		s.DrawTextCentered(s.Height()/2, " PAUSED ")
	case engine.Finished:
		p.drawResults(s, snap)
	}
}

func (p *Playfield) drawLanes(s *core.Screen, held []bool) {
	left := p.laneLeft(s)
	receptor := p.receptorRow(s)

	for col := 0; col <= p.meta.Keys; col++ {
		x := left + col*(laneInnerWidth+1)
		for y := 0; y < s.Height()-1; y++ {
			s.SetColored(x, y, '│', core.ColorGray)
		}
	}

	for col := 0; col < p.meta.Keys; col++ {
		x := left + 1 + col*(laneInnerWidth+1)
		color := core.ColorGray
		r := '─'
		if col < len(held) && held[col] {
			color = core.ColorWhite
			r = '━'
		}
		for i := 0; i < laneInnerWidth; i++ {
			s.SetColored(x+i, receptor, r, color)
		}
		// Key hint under the receptor.
		if col < len(p.keys) && len(p.keys[col]) > 0 {
			s.SetColored(x+laneInnerWidth/2, receptor+1, rune(p.keys[col][0]), core.ColorGray)
		}
	}
}

func (p *Playfield) drawNotes(s *core.Screen, snap *engine.Snapshot) {
	left := p.laneLeft(s)

	for _, n := range snap.Notes {
		x := left + 1 + n.Column*(laneInnerWidth+1)
		headRow := p.noteRow(s, snap.Song, n.Time)

		if n.Hold {
			endRow := p.noteRow(s, snap.Song, n.EndTime)
			lo, hi := headRow, endRow
			if lo > hi {
				lo, hi = hi, lo
			}
			bodyColor := core.ColorBlue
			if n.Held {
				bodyColor = core.ColorCyan
			}
			for y := lo; y <= hi; y++ {
				s.SetColored(x+laneInnerWidth/2, y, '║', bodyColor)
			}
			for i := 0; i < laneInnerWidth; i++ {
				s.SetColored(x+i, headRow, '█', bodyColor)
			}
			continue
		}

		for i := 0; i < laneInnerWidth; i++ {
			s.SetColored(x+i, headRow, '█', core.ColorWhite)
		}
	}
}

func (p *Playfield) drawHUD(s *core.Screen, snap *engine.Snapshot) {
	right := p.laneLeft(s) + p.meta.Keys*(laneInnerWidth+1) + 3
	if right+20 > s.Width() {
		return // no room beside the lanes
	}

	s.DrawTextColored(right, 1, p.meta.Title, core.ColorWhite)
	s.DrawTextColored(right, 2, p.meta.Artist, core.ColorGray)

	s.DrawText(right, 4, fmt.Sprintf("Score  %d", snap.Score.Score))
	s.DrawText(right, 5, fmt.Sprintf("Combo  %d (max %d)", snap.Score.Combo, snap.Score.MaxCombo))
	s.DrawText(right, 6, fmt.Sprintf("Acc    %.2f%%", snap.Score.Accuracy))
	s.DrawText(right, 7, fmt.Sprintf("Rate   %.2fx", snap.Rate))
	s.DrawText(right, 8, fmt.Sprintf("NPS    %d", snap.NPS))

	if snap.TotalParts > 0 {
		s.DrawTextColored(right, 10,
			fmt.Sprintf("%d / %d notes", snap.JudgedParts, snap.TotalParts), core.ColorGray)
	}
	if snap.GhostTaps > 0 {
		s.DrawTextColored(right, 11, fmt.Sprintf("ghosts %d", snap.GhostTaps), core.ColorGray)
	}
	if snap.HasCheckpoint {
		s.DrawTextColored(right, 12,
			fmt.Sprintf("checkpoint @ %s", snap.CheckpointAt), core.ColorOrange)
	}

	// Song position at the bottom.
	s.DrawTextColored(1, s.Height()-1,
		fmt.Sprintf("%s / %s", snap.Song, snap.Duration), core.ColorGray)
}

func (p *Playfield) drawFlash(s *core.Screen, snap *engine.Snapshot) {
	if !snap.HasJudgement {
		return
	}
	age := snap.Song - snap.LastJudgement.Time
	if age < 0 || age > core.FromMillis(flashDurationMS) {
		return
	}

	row := p.receptorRow(s) - 3
	if !p.scroll.Downscroll {
		row = p.receptorRow(s) + 3
	}

	tier := snap.LastJudgement.Tier
	label := tier.String()
	if off := snap.LastJudgement.Offset; off != 0 {
		label = fmt.Sprintf("%s %+dms", label, off.Millis())
	}
	x := (s.Width() - len(label)) / 2
	s.DrawTextColored(x, row, label, tierColors[tier])
}

func (p *Playfield) drawResults(s *core.Screen, snap *engine.Snapshot) {
	mid := s.Height() / 2
	lines := []struct {
		text  string
		color core.Color
	}{
		{"RESULTS", core.ColorWhite},
		{fmt.Sprintf("Score %d   Acc %.2f%%   Max combo %d",
			snap.Score.Score, snap.Score.Accuracy, snap.Score.MaxCombo), core.ColorWhite},
		{tierLine(snap), core.ColorGray},
		{"esc: back   q: quit", core.ColorGray},
	}

	for i, l := range lines {
		y := mid - len(lines)/2 + i
		x := (s.Width() - len(l.text)) / 2
		s.DrawTextColored(x, y, l.text, l.color)
	}
}

func tierLine(snap *engine.Snapshot) string {
	c := snap.Score.TierCounts
	return fmt.Sprintf("marv %d  perf %d  great %d  good %d  bad %d  early %d  miss %d",
		c[0], c[1], c[2], c[3], c[4], c[5], c[6])
}
