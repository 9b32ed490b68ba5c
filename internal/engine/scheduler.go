package engine

import (
	"context"
	"sync"
	"time"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/clock"
	"github.com/vovakirdan/tui-mania/internal/core"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/score"
)

// Defaults for Options fields left zero.
const (
	DefaultTickRate    = 200
	DefaultRate        = 1.0
	defaultToleranceMS = 200
	defaultLeadInMS    = 3000
	defaultLookaheadMS = 5000
	defaultFinishMS    = 2000
	defaultMarkGapMS   = 15000
	defaultRetryMS     = 1000
)

// Options configure one run. Zero values fall back to defaults.
type Options struct {
	TickRate    int           // logic ticks per second
	Rate        float64       // initial playback rate
	Tolerance   core.SongTime // inputs older than now minus this are dropped
	LeadIn      core.SongTime // pre-roll before song position zero
	Lookahead   core.SongTime // how far ahead snapshots expose notes
	FinishAfter core.SongTime // grace past the last note before Finished

	CheckpointGap core.SongTime // minimum song time between marks
	RetryOffset   core.SongTime // rewind applied on checkpoint restore; NoRetryOffset disables it
}

// NoRetryOffset makes RestoreCheckpoint land exactly on the marked song time
// instead of rewinding for a run-up. The zero Options value keeps the
// default rewind.
const NoRetryOffset = core.SongTime(-1)

func (o Options) withDefaults() Options {
	if o.TickRate <= 0 {
		o.TickRate = DefaultTickRate
	}
	if o.Rate <= 0 {
		o.Rate = DefaultRate
	}
	if o.Tolerance <= 0 {
		o.Tolerance = core.FromMillis(defaultToleranceMS)
	}
	if o.LeadIn <= 0 {
		o.LeadIn = core.FromMillis(defaultLeadInMS)
	}
	if o.Lookahead <= 0 {
		o.Lookahead = core.FromMillis(defaultLookaheadMS)
	}
	if o.FinishAfter <= 0 {
		o.FinishAfter = core.FromMillis(defaultFinishMS)
	}
	if o.CheckpointGap <= 0 {
		o.CheckpointGap = core.FromMillis(defaultMarkGapMS)
	}
	if o.RetryOffset == 0 {
		o.RetryOffset = core.FromMillis(defaultRetryMS)
	}
	if o.RetryOffset < 0 {
		o.RetryOffset = 0
	}
	return o
}

// TickInterval returns the song-time length of one logic tick at rate 1.
func (o Options) TickInterval() core.SongTime {
	return core.SongTime(1_000_000 / int64(o.TickRate))
}

// Summary is the completed-run payload handed to the persistence
// collaborator once, off the logic schedule.
type Summary struct {
	ChartHash    string
	Rate         float64
	Score        score.State
	GhostTaps    int
	StaleDropped uint64
}

// Scheduler owns all mutable run state and advances it on a fixed tick:
// drain inputs, move the clock, judge, sweep, score, publish. Everything
// timing-critical happens on this single schedule; producers only touch the
// input queue and the audio feed.
type Scheduler struct {
	mu sync.Mutex

	chart  *chart.Chart
	policy score.Policy
	opts   Options

	status      Status
	clk         *clock.Clock
	judger      *judge.Engine
	state       score.State
	queue       *InputQueue
	feed        *clock.AudioFeed
	pub         *Publisher
	checkpoints *Checkpoints

	pendingRate float64 // 0 = no change queued
	last        judge.Judgement
	hasLast     bool
	journal     []judge.Judgement
	recent      []core.SongTime // press times inside the NPS window
	totalParts  int

	onEvent  func(core.InputEvent)
	onRate   func(core.SongTime, float64)
	onFinish func(Summary)
	reported bool
}

// New builds a scheduler in the Idle state. Nothing moves until Start.
func New(c *chart.Chart, w judge.Window, p score.Policy, opts Options) *Scheduler {
	opts = opts.withDefaults()

	total := 0
	for _, n := range c.Notes() {
		total++
		if n.IsHold() {
			total++
		}
	}

	return &Scheduler{
		chart:       c,
		policy:      p,
		opts:        opts,
		clk:         clock.New(opts.LeadIn, opts.Rate),
		judger:      judge.NewEngine(c, w),
		state:       score.NewState(),
		queue:       NewInputQueue(),
		feed:        clock.NewAudioFeed(),
		pub:         NewPublisher(),
		checkpoints: NewCheckpoints(opts.CheckpointGap),
		totalParts:  total,
	}
}

// Push queues an input event. Safe from any goroutine.
func (s *Scheduler) Push(ev core.InputEvent) {
	s.queue.Push(ev)
}

// Feed returns the audio position feed for the audio-schedule writer.
func (s *Scheduler) Feed() *clock.AudioFeed { return s.feed }

// Latest returns the most recent snapshot, or nil before the first tick.
func (s *Scheduler) Latest() *Snapshot { return s.pub.Latest() }

// Journal returns all judgements made so far, in application order.
func (s *Scheduler) Journal() []judge.Judgement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]judge.Judgement, len(s.journal))
	copy(out, s.journal)
	return out
}

// OnEvent registers a tap on every event that survives the drain, in the
// order it is judged. Used by the replay recorder.
func (s *Scheduler) OnEvent(fn func(core.InputEvent)) {
	s.mu.Lock()
	s.onEvent = fn
	s.mu.Unlock()
}

// OnRateChange registers a tap on every applied rate change.
func (s *Scheduler) OnRateChange(fn func(core.SongTime, float64)) {
	s.mu.Lock()
	s.onRate = fn
	s.mu.Unlock()
}

// OnFinish registers the run-complete callback. It is invoked once, on its
// own goroutine, so persistence never blocks a tick.
func (s *Scheduler) OnFinish(fn func(Summary)) {
	s.mu.Lock()
	s.onFinish = fn
	s.mu.Unlock()
}

// Start moves Idle to Running and publishes the first snapshot.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Idle {
		return
	}
	s.status = Running
	s.publish()
}

// Pause freezes the clock and the drain. Ignored unless Running.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == Running {
		s.status = Paused
		s.publish()
	}
}

// Resume continues a paused run.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == Paused {
		s.status = Running
		s.publish()
	}
}

// Status returns the current lifecycle state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetRate queues a playback rate change; it takes effect at the start of
// the next tick, never mid-tick.
func (s *Scheduler) SetRate(rate float64) {
	s.mu.Lock()
	s.pendingRate = rate
	s.mu.Unlock()
}

// Mark saves a checkpoint of the current run state. Fails with
// ErrCheckpointTooSoon inside the minimum gap since the last mark.
func (s *Scheduler) Mark() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Running && s.status != Paused {
		return ErrNoCheckpoint
	}
	return s.checkpoints.Mark(Checkpoint{
		Song:  s.clk.Now(),
		Clock: s.clk.State(),
		Judge: s.judger.State(),
		Score: s.state,
	})
}

// RestoreCheckpoint rolls the run back to the saved checkpoint, rewound by
// the retry offset for a run-up. Pending inputs are discarded; on error the
// run state is unchanged.
func (s *Scheduler) RestoreCheckpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Running && s.status != Paused {
		return ErrNoCheckpoint
	}
	cp, err := s.checkpoints.Saved()
	if err != nil {
		return err
	}

	st := cp.Clock
	st.Song -= s.opts.RetryOffset
	s.clk.Restore(st)
	s.judger.Restore(cp.Judge)
	s.state = cp.Score
	s.queue.Clear()
	s.recent = nil
	s.hasLast = false
	s.publish()
	return nil
}

// Advance runs exactly one logic tick of the given elapsed wall time. It is
// the pure core of the loop: tests and the replay player drive it directly.
func (s *Scheduler) Advance(elapsed core.SongTime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step(elapsed)
}

// Run drives ticks at the configured rate until the context is cancelled or
// the run finishes. Wall jitter does not leak into song time: every tick
// advances by exactly one tick interval; audio reports correct the drift.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.opts.TickRate))
	defer ticker.Stop()

	tick := s.opts.TickInterval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.step(tick)
			done := s.status == Finished
			s.mu.Unlock()
			if done {
				return
			}
		}
	}
}

func (s *Scheduler) step(elapsed core.SongTime) {
	if s.status != Running {
		// Paused and finished runs keep the snapshot fresh so a
		// republish after resize or restore is never missed.
		s.publish()
		return
	}

	// Rate changes and audio corrections land between ticks only.
	if s.pendingRate > 0 {
		s.clk.SetRate(s.pendingRate)
		s.pendingRate = 0
		if s.onRate != nil {
			s.onRate(s.clk.Now(), s.clk.Rate())
		}
	}
	if pos, rate, ok := s.feed.Consume(); ok {
		// The pair is consumed whole: the position was measured at that
		// rate, so applying one without the other would tear the report.
		prev := s.clk.Rate()
		s.clk.Report(pos)
		s.clk.SetRate(rate)
		if s.onRate != nil && s.clk.Rate() != prev {
			s.onRate(s.clk.Now(), s.clk.Rate())
		}
	}

	now := s.clk.Advance(elapsed)

	for _, ev := range s.queue.Drain(now, s.opts.Tolerance) {
		if s.onEvent != nil {
			s.onEvent(ev)
		}
		if ev.Action == core.Press {
			s.recent = append(s.recent, ev.Time)
		}
		if j, ok := s.judger.OnInput(ev); ok {
			s.apply(j)
		}
	}
	for _, j := range s.judger.Sweep(now) {
		s.apply(j)
	}

	cut := now - core.FromMillis(1000)
	for len(s.recent) > 0 && s.recent[0] <= cut {
		s.recent = s.recent[1:]
	}

	if s.judger.AllJudged() && now > s.chart.LastNoteEnd()+s.opts.FinishAfter {
		s.status = Finished
		s.publish()
		s.report()
		return
	}
	s.publish()
}

func (s *Scheduler) apply(j judge.Judgement) {
	s.state = s.policy.Apply(s.state, j, s.clk.Rate())
	s.journal = append(s.journal, j)
	s.last = j
	s.hasLast = true
}

func (s *Scheduler) report() {
	if s.onFinish == nil || s.reported {
		return
	}
	s.reported = true
	sum := Summary{
		ChartHash:    s.chart.Hash(),
		Rate:         s.clk.Rate(),
		Score:        s.state,
		GhostTaps:    s.judger.GhostTaps(),
		StaleDropped: s.queue.StaleDropped(),
	}
	go s.onFinish(sum)
}

func (s *Scheduler) publish() {
	s.pub.Publish(s.snapshot())
}

func (s *Scheduler) snapshot() *Snapshot {
	now := s.clk.Now()
	horizon := now + s.opts.Lookahead

	var notes []NoteView
	for col := 0; col < s.chart.Keys(); col++ {
		if h := s.judger.Hold(col); h.Active {
			n := s.chart.Column(col)[h.NoteIndex]
			notes = append(notes, NoteView{
				Column: col, Time: n.Time, EndTime: n.EndTime,
				Hold: true, Held: true,
			})
		}
		colNotes := s.chart.Column(col)
		for i := s.judger.Cursor(col); i < len(colNotes); i++ {
			n := colNotes[i]
			if n.Time > horizon {
				break
			}
			notes = append(notes, NoteView{
				Column: col, Time: n.Time, EndTime: n.EndTime,
				Hold: n.IsHold(),
			})
		}
	}

	nps := 0
	cut := now - core.FromMillis(1000)
	for _, ts := range s.recent {
		if ts > cut {
			nps++
		}
	}

	snap := &Snapshot{
		Status:       s.status,
		Song:         now,
		Rate:         s.clk.Rate(),
		Notes:        notes,
		Score:        s.state,
		NPS:          nps,
		GhostTaps:    s.judger.GhostTaps(),
		StaleDropped: s.queue.StaleDropped(),
		JudgedParts:  s.judger.JudgedParts(),
		TotalParts:   s.totalParts,
		Duration:     s.chart.LastNoteEnd(),
	}
	if s.hasLast {
		snap.LastJudgement = s.last
		snap.HasJudgement = true
	}
	if cp, err := s.checkpoints.Saved(); err == nil {
		snap.HasCheckpoint = true
		snap.CheckpointAt = cp.Song
	}
	return snap
}
