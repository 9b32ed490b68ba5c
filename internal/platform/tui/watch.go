package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/config"
	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/engine"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/replay"
	"github.com/vovakirdan/tui-mania/internal/score"
)

// WatchModel replays a recorded run on screen. The scheduler is stepped by
// whole fixed ticks accumulated from wall time, and logged events are fed
// on the same schedule the live run used, so the outcome matches the
// recorded one.
type WatchModel struct {
	sched  *engine.Scheduler
	field  *Playfield
	screen *core.Screen
	tick   core.SongTime

	events []replay.Event
	rates  []replay.RateChange
	ei, ri int

	lastWall time.Time
	carry    time.Duration
	down     []bool
	paused   bool
	quitting bool
}

// NewWatchModel prepares playback of a replay log against its chart.
// The log must already be validated against the chart hash.
func NewWatchModel(c *chart.Chart, lg *replay.Log, cfg config.Config, policy score.Policy) WatchModel {
	opts := cfg.EngineOptions()
	opts.Rate = lg.Rate
	window := judge.FromMode(judge.WindowMode(lg.WindowMode), lg.WindowValue)
	sched := engine.New(c, window, policy, opts)
	sched.Start()

	return WatchModel{
		sched:    sched,
		field:    NewPlayfield(c.Meta(), cfg.Scroll, cfg.Keys),
		screen:   core.NewScreen(80, 24),
		tick:     opts.TickInterval(),
		events:   lg.Events,
		rates:    lg.RateChanges,
		down:     make([]bool, c.Meta().Keys),
		lastWall: time.Now(),
	}
}

// Init starts the frame loop.
func (m WatchModel) Init() tea.Cmd {
	return frameCmd(renderFPS)
}

// Update handles messages.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
			m.lastWall = time.Now()
			m.carry = 0
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case FrameMsg:
		m = m.step()
		return m, frameCmd(renderFPS)
	}
	return m, nil
}

// step advances the scheduler by the whole ticks elapsed since the last
// frame, feeding log entries as their times come due.
func (m WatchModel) step() WatchModel {
	now := time.Now()
	if m.paused || m.sched.Status() == engine.Finished {
		m.lastWall = now
		return m
	}

	elapsed := m.carry + now.Sub(m.lastWall)
	m.lastWall = now
	tickDur := time.Duration(m.tick) * time.Microsecond

	for elapsed >= tickDur {
		elapsed -= tickDur
		m.feed()
		m.sched.Advance(m.tick)
	}
	m.carry = elapsed
	return m
}

// feed pushes log entries due before the next tick, mirroring the order the
// live run saw them.
func (m *WatchModel) feed() {
	snap := m.sched.Latest()
	if snap == nil {
		return
	}
	song := snap.Song

	for m.ri < len(m.rates) && m.rates[m.ri].Time <= song {
		m.sched.SetRate(m.rates[m.ri].Rate)
		m.ri++
	}
	for m.ei < len(m.events) && m.events[m.ei].Time <= song+m.tick {
		ev := m.events[m.ei]
		m.sched.Push(core.InputEvent{Time: ev.Time, Column: ev.Column, Action: ev.Action})
		if ev.Column >= 0 && ev.Column < len(m.down) {
			m.down[ev.Column] = ev.Action == core.Press
		}
		m.ei++
	}
}

// View renders the playback.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}
	snap := m.sched.Latest()
	if snap == nil {
		return "loading..."
	}

	m.field.Draw(m.screen, snap, m.down)
	footer := "REPLAY  |  p/space: pause  |  q: quit"
	m.screen.DrawTextColored(1, 0, footer, core.ColorGray)
	return RenderScreen(m.screen)
}

// RunWatch plays back a replay log in its own Bubble Tea program.
func RunWatch(c *chart.Chart, lg *replay.Log, cfg config.Config) error {
	model := NewWatchModel(c, lg, cfg, cfg.Scoring)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
