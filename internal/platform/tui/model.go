package tui

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/config"
	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/engine"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/replay"
	"github.com/vovakirdan/tui-mania/internal/storage"
)

const (
	// holdGraceMS is how long after the last autorepeat of a lane key the
	// column counts as released. Terminals deliver no key-up events, so
	// holds ride on autorepeat.
	holdGraceMS = 150
	rateStep    = 0.05
)

// PlayModel is the Bubble Tea model for one run. The scheduler ticks on its
// own goroutine; this model only reads snapshots, pushes input events, and
// draws.
type PlayModel struct {
	sched    *engine.Scheduler
	field    *Playfield
	screen   *core.Screen
	cfg      config.Config
	keys     PlayKeyMap
	help     help.Model
	practice bool

	// Per-column autorepeat tracking. Shared backing arrays survive the
	// value-receiver copies Bubble Tea makes.
	down     []bool
	lastSeen []time.Time

	quitting bool
	backing  bool
}

// NewPlayModel builds the model around an already-constructed scheduler.
// The caller owns the scheduler's goroutine.
func NewPlayModel(sched *engine.Scheduler, meta chart.Meta, cfg config.Config, practice bool) PlayModel {
	h := help.New()
	h.ShowAll = false
	return PlayModel{
		sched:    sched,
		field:    NewPlayfield(meta, cfg.Scroll, cfg.Keys),
		screen:   core.NewScreen(80, 24),
		cfg:      cfg,
		keys:     DefaultPlayKeyMap(),
		help:     h,
		practice: practice,
		down:     make([]bool, meta.Keys),
		lastSeen: make([]time.Time, meta.Keys),
	}
}

// Init starts the run and the frame loop.
func (m PlayModel) Init() tea.Cmd {
	m.sched.Start()
	return frameCmd(renderFPS)
}

// Update handles messages.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil
	case FrameMsg:
		m.releaseIdleLanes()
		return m, frameCmd(renderFPS)
	}
	return m, nil
}

func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.sched.Latest()

	// Lane keys first: during a run they outrank everything but quit.
	if snap != nil && snap.Status == engine.Running {
		if col := laneIndex(m.cfg.Keys, msg.String()); col >= 0 {
			m.pressLane(col, snap.Song)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if snap != nil && snap.Status == engine.Running {
			m.sched.Pause()
			return m, nil
		}
		m.backing = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		if snap == nil {
			return m, nil
		}
		switch snap.Status {
		case engine.Running:
			m.sched.Pause()
		case engine.Paused:
			m.sched.Resume()
		}
		return m, nil

	case key.Matches(msg, m.keys.RateUp):
		if snap != nil {
			m.sched.SetRate(snap.Rate + rateStep)
		}
		return m, nil

	case key.Matches(msg, m.keys.RateDown):
		if snap != nil {
			m.sched.SetRate(snap.Rate - rateStep)
		}
		return m, nil

	case key.Matches(msg, m.keys.Mark):
		if m.practice {
			//nolint:errcheck // Too-soon marks are simply ignored
			m.sched.Mark()
		}
		return m, nil

	case key.Matches(msg, m.keys.Restore):
		if m.practice {
			//nolint:errcheck // Restores with no checkpoint are ignored
			m.sched.RestoreCheckpoint()
		}
		return m, nil
	}

	return m, nil
}

// pressLane pushes a press on the first key event and refreshes the
// autorepeat deadline on repeats.
func (m PlayModel) pressLane(col int, now core.SongTime) {
	if !m.down[col] {
		m.down[col] = true
		m.sched.Push(core.InputEvent{Time: now, Column: col, Action: core.Press})
	}
	m.lastSeen[col] = time.Now()
}

// releaseIdleLanes synthesizes releases for lanes whose autorepeat stream
// stopped.
func (m PlayModel) releaseIdleLanes() {
	snap := m.sched.Latest()
	if snap == nil {
		return
	}
	deadline := time.Now().Add(-holdGraceMS * time.Millisecond)
	for col := range m.down {
		if m.down[col] && m.lastSeen[col].Before(deadline) {
			m.down[col] = false
			m.sched.Push(core.InputEvent{Time: snap.Song, Column: col, Action: core.Release})
		}
	}
}

// View renders the latest snapshot.
func (m PlayModel) View() string {
	if m.quitting || m.backing {
		return ""
	}
	snap := m.sched.Latest()
	if snap == nil {
		return "loading..."
	}

	m.field.Draw(m.screen, snap, m.down)
	if snap.Status == engine.Paused {
		return RenderScreen(m.screen) + "\n" + m.help.View(m.keys)
	}
	return RenderScreen(m.screen)
}

// BackToMenu reports whether the user left the run without quitting.
func (m PlayModel) BackToMenu() bool { return m.backing }

// IsQuitting reports whether the user quit entirely.
func (m PlayModel) IsQuitting() bool { return m.quitting }

// RunPlay plays a chart in its own Bubble Tea program: scheduler goroutine,
// replay recording, and persistence on finish. practice enables checkpoints
// and disables run saving.
func RunPlay(c *chart.Chart, cfg config.Config, store *storage.Store, practice bool) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "mania"})

	sched := engine.New(c, cfg.JudgeWindow(), cfg.Scoring, cfg.EngineOptions())

	var rec *replay.Recorder
	if !practice {
		rec = replay.NewRecorder(c.Hash(), cfg.Playback.Rate,
			judge.WindowMode(cfg.Window.Mode), cfg.Window.Value)
		rec.Attach(sched)
	}

	saved := make(chan struct{})
	sched.OnFinish(func(sum engine.Summary) {
		defer close(saved)
		if practice || store == nil {
			return
		}
		recPayload, err := rec.Log().Marshal()
		if err != nil {
			logger.Warn("could not encode replay", "error", err)
			recPayload = nil
		}
		_, err = store.SaveRun(storage.RunRecord{
			ChartHash:  sum.ChartHash,
			Title:      c.Meta().Title,
			Rate:       sum.Rate,
			Score:      sum.Score.Score,
			Accuracy:   sum.Score.Accuracy,
			MaxCombo:   sum.Score.MaxCombo,
			TierCounts: sum.Score.TierCounts,
			GhostTaps:  sum.GhostTaps,
			Replay:     recPayload,
		})
		if err != nil {
			logger.Warn("could not save run", "error", err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	model := NewPlayModel(sched, c.Meta(), cfg, practice)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	cancel()

	// Give a just-finished run its save before tearing down.
	if sched.Status() == engine.Finished {
		select {
		case <-saved:
		case <-time.After(2 * time.Second):
			logger.Warn("timed out waiting for run save")
		}
	}
	return err
}
