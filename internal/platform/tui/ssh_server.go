// SSH server support via Wish: each session gets its own picker and
// gameplay flow, with runs saved to the shared database.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/config"
	"github.com/vovakirdan/tui-mania/internal/engine"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/replay"
	"github.com/vovakirdan/tui-mania/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.mania/host_key.
	HostKeyPath string

	// DBPath is the path to the runs database.
	DBPath string

	// ChartDir is the directory scanned for chart files.
	ChartDir string

	// Game is the gameplay configuration applied to every session.
	Game config.Config

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.mania/runs.db",
		ChartDir:    "charts",
		Game:        config.DefaultConfig(),
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server for remote play.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "mania-ssh",
	})

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open runs database", "error", err)
		// Continue without storage
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".mania", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(s.store, s.config, sshSession.User(),
		pty.Window.Width, pty.Window.Height)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionModel manages the full session flow: picker -> play -> picker.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	store    *storage.Store
	config   SSHServerConfig
	username string
	width    int
	height   int

	picker    PickerModel
	pickerErr error
	play      *PlayModel
	cancel    context.CancelFunc
	inPlay    bool
	quitting  bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(store *storage.Store, cfg SSHServerConfig, username string, width, height int) SessionModel {
	m := SessionModel{
		store:    store,
		config:   cfg,
		username: username,
		width:    width,
		height:   height,
	}
	m.picker, m.pickerErr = NewPickerModel(cfg.ChartDir, store)
	m.picker.width = width
	m.picker.height = height
	return m
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.pickerErr != nil {
		return nil
	}
	return m.picker.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	if m.pickerErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if m.inPlay && m.play != nil {
		return m.updatePlay(msg)
	}
	return m.updatePicker(msg)
}

// updatePicker handles updates when in picker mode.
func (m SessionModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	newPicker, cmd := m.picker.Update(msg)
	if pickerModel, ok := newPicker.(PickerModel); ok {
		m.picker = pickerModel
	}

	if m.picker.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if sel := m.picker.Selected(); sel != nil {
		playCmd, err := m.startPlay(sel.Path, m.picker.PracticeMode())
		if err != nil {
			// Broken chart file; drop back to a fresh picker.
			m.picker, m.pickerErr = NewPickerModel(m.config.ChartDir, m.store)
			return m, m.picker.Init()
		}
		return m, playCmd
	}

	return m, cmd
}

// startPlay builds the scheduler and play model for one chart.
func (m *SessionModel) startPlay(path string, practice bool) (tea.Cmd, error) {
	c, err := chart.LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := m.config.Game
	sched := engine.New(c, cfg.JudgeWindow(), cfg.Scoring, cfg.EngineOptions())

	if !practice && m.store != nil {
		rec := replay.NewRecorder(c.Hash(), cfg.Playback.Rate,
			judge.WindowMode(cfg.Window.Mode), cfg.Window.Value)
		rec.Attach(sched)
		store := m.store
		title := c.Meta().Title
		sched.OnFinish(func(sum engine.Summary) {
			payload, err := rec.Log().Marshal()
			if err != nil {
				payload = nil
			}
			//nolint:errcheck // Best-effort save, session continues regardless
			store.SaveRun(storage.RunRecord{
				ChartHash:  sum.ChartHash,
				Title:      title,
				Rate:       sum.Rate,
				Score:      sum.Score.Score,
				Accuracy:   sum.Score.Accuracy,
				MaxCombo:   sum.Score.MaxCombo,
				TierCounts: sum.Score.TierCounts,
				GhostTaps:  sum.GhostTaps,
				Replay:     payload,
			})
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	go sched.Run(ctx)

	play := NewPlayModel(sched, c.Meta(), cfg, practice)
	play.screen.Resize(m.width, m.height)
	m.play = &play
	m.cancel = cancel
	m.inPlay = true

	return play.Init(), nil
}

// updatePlay handles updates when in play mode.
func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.play.Update(msg)
	if playModel, ok := newModel.(PlayModel); ok {
		m.play = &playModel
	}

	// Back to picker: stop the run and swallow the play model's quit.
	if m.play.BackToMenu() {
		m.stopPlay()
		m.picker, m.pickerErr = NewPickerModel(m.config.ChartDir, m.store)
		m.picker.width = m.width
		m.picker.height = m.height
		return m, m.picker.Init()
	}

	if m.play.IsQuitting() {
		m.stopPlay()
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

func (m *SessionModel) stopPlay() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.play = nil
	m.inPlay = false
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	if m.pickerErr != nil {
		return fmt.Sprintf("\n  %v\n\n  press any key to exit\n", m.pickerErr)
	}

	if m.inPlay && m.play != nil {
		return m.play.View()
	}

	return m.picker.View()
}
