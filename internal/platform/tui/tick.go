// Package tui provides the Bubble Tea integration: frame loop, input
// mapping, playfield rendering, and session orchestration. All gameplay
// state lives in the engine; this package only reads snapshots and pushes
// timestamped input events.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg is sent to trigger a render frame. The logic schedule ticks on
// its own goroutine; frames only read the latest snapshot.
type FrameMsg time.Time

// renderFPS is the frame rate for gameplay and replay views. Frames never
// influence judging, so this is purely a smoothness/CPU tradeoff.
var renderFPS = 60

// SetRenderFPS overrides the render frame rate. Values below 1 are ignored.
func SetRenderFPS(fps int) {
	if fps >= 1 {
		renderFPS = fps
	}
}

// frameCmd returns a Bubble Tea command that sends frame messages at the
// specified rate.
func frameCmd(fps int) tea.Cmd {
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
