package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"git.lost.host/meutraa/handbeat/internal/audio"
	"git.lost.host/meutraa/handbeat/internal/game"
	"git.lost.host/meutraa/handbeat/internal/pose"
	"git.lost.host/meutraa/handbeat/internal/schedule"
	"git.lost.host/meutraa/handbeat/internal/score"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrClosed is returned when restarting a closed session.
var ErrClosed = errors.New("session is closed")

// NoteView is an active note placed on the Z axis for presentation.
type NoteView struct {
	ID    string
	Type  game.NoteType
	Lane  int
	Dir   game.SwipeDirection
	Z     float64
	TailZ float64 // Equals Z unless this is a hold
}

// Snapshot is the read-only state handed to presentation after a tick.
type Snapshot struct {
	Time     float64
	Score    int
	Combo    int
	MaxCombo int
	Last     *score.Event
	Progress float64
	Notes    []NoteView
	Hands    pose.HandLandmarks
	Finished bool
}

// Session is one play of one chart. Every exported method takes the session
// lock, so a render goroutine may read while the update loop ticks.
type Session struct {
	ID uuid.UUID

	mu        sync.Mutex
	chart     *game.Chart
	transport audio.Transport
	tracker   *pose.Tracker
	scheduler *schedule.Scheduler
	engine    *score.Engine
	metrics   *metrics

	result     *game.GameResult
	closed     bool
	onResult   func(uuid.UUID, game.GameResult)
	onEvent    func(score.Event)
	engineOpts []score.EngineOption
	base       zerolog.Logger
	log        zerolog.Logger
}

type Option func(s *Session)

// OnResult is called exactly once, from Tick, when the session finishes. It
// runs under the session lock and must not call back into the session.
func OnResult(fn func(id uuid.UUID, result game.GameResult)) Option {
	return func(s *Session) { s.onResult = fn }
}

// OnEvent is called for every judged note, under the session lock.
func OnEvent(fn func(score.Event)) Option {
	return func(s *Session) { s.onEvent = fn }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.base = log }
}

// New validates chart and prepares a session against transport. The
// transport is not started. A nil tracker never sees a hand.
func New(chart *game.Chart, transport audio.Transport, tracker *pose.Tracker, opts ...Option) (*Session, error) {
	if nil == transport {
		return nil, errors.New("session needs a transport")
	}
	if nil == tracker {
		tracker = pose.NewTracker(nil)
	}
	s := &Session{
		ID:        uuid.New(),
		chart:     chart,
		transport: transport,
		tracker:   tracker,
		base:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.base.With().Str("session", s.ID.String()).Logger()

	var err error
	s.scheduler, err = schedule.New(chart, transport.BufferDuration())
	if nil != err {
		return nil, err
	}

	s.engineOpts = []score.EngineOption{score.WithLogger(s.log)}
	if nil != s.onEvent {
		s.engineOpts = append(s.engineOpts, score.OnEvent(s.onEvent))
	}
	s.engine = score.NewEngine(s.engineOpts...)

	s.metrics, err = newMetrics(func() int64 {
		s.mu.Lock()
		defer s.mu.Unlock()
		return int64(s.engine.ActiveCount())
	})
	if nil != err {
		return nil, fmt.Errorf("unable to create session metrics: %w", err)
	}

	s.log.Info().
		Str("chart", chart.Title).
		Int("notes", len(chart.Notes)).
		Float64("bpm", chart.BPM).
		Float64("duration", transport.BufferDuration()).
		Msg("session ready")
	return s, nil
}

func (s *Session) Chart() *game.Chart {
	return s.chart
}

// Tick runs one update: sample hands, spawn due notes, judge, and check for
// completion. The result is non-nil only on the tick that finishes the
// session.
func (s *Session) Tick(frame pose.Frame, nowMs int64) (Snapshot, *game.GameResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.transport.CurrentTime()
	if s.closed {
		return s.snapshot(t, pose.HandLandmarks{}), nil
	}

	ctx := context.Background()
	s.metrics.ticks.Add(ctx, 1)

	hands := s.tracker.Sample(frame, nowMs)
	s.engine.Spawn(s.scheduler.Advance(t)...)
	for _, ev := range s.engine.Evaluate(hands, t) {
		s.metrics.judged(ctx, s.chart.Title, ev.Judgement.String())
	}

	var result *game.GameResult
	if nil == s.result && s.scheduler.Finished(t, s.engine.ActiveCount()) {
		r := s.engine.Result()
		s.result = &r
		result = &r
		s.metrics.results.Add(ctx, 1)
		s.log.Info().
			Int("score", r.Score).
			Int("max_combo", r.MaxCombo).
			Msg("session finished")
		if nil != s.onResult {
			s.onResult(s.ID, r)
		}
	}
	return s.snapshot(t, hands), result
}

func (s *Session) snapshot(t float64, hands pose.HandLandmarks) Snapshot {
	active := s.engine.Active()
	notes := make([]NoteView, 0, len(active))
	for _, n := range active {
		z := schedule.Position(s.chart, n.Note, t)
		tail := z
		if n.Note.Type == game.Hold {
			tail = z - n.Note.Duration*game.TravelSpeed
		}
		notes = append(notes, NoteView{
			ID:    n.Note.ID,
			Type:  n.Note.Type,
			Lane:  n.Note.Lane,
			Dir:   n.Note.Dir,
			Z:     z,
			TailZ: tail,
		})
	}
	return Snapshot{
		Time:     t,
		Score:    int(math.Round(s.engine.Score())),
		Combo:    s.engine.Combo(),
		MaxCombo: s.engine.MaxCombo(),
		Last:     s.engine.LastEvent(),
		Progress: s.scheduler.Progress(t),
		Notes:    notes,
		Hands:    hands,
		Finished: nil != s.result,
	}
}

// Result is the finished result, nil until the session has finished.
func (s *Session) Result() *game.GameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nil == s.result {
		return nil
	}
	r := *s.result
	return &r
}

// Restart stops and rewinds the transport, then plays the chart again from
// its first note with a new ID, an empty score and no smoothing history.
// The transport is left stopped.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.transport.Stop(); nil != err {
		return fmt.Errorf("unable to stop transport: %w", err)
	}
	if err := s.transport.Seek(0); nil != err {
		return fmt.Errorf("unable to rewind transport: %w", err)
	}

	s.engine.Close()
	s.ID = uuid.New()
	s.log = s.base.With().Str("session", s.ID.String()).Logger()
	s.engineOpts[0] = score.WithLogger(s.log)
	s.engine = score.NewEngine(s.engineOpts...)
	s.scheduler.Reset()
	s.tracker.Reset()
	s.result = nil
	s.log.Info().Msg("session restarted")
	return nil
}

// Close stops the transport and drops every active note. No event or result
// fires afterwards. Calling it again does nothing.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.engine.Close()
	s.mu.Unlock()

	// The gauge callback takes the lock, unregister outside it
	if err := s.metrics.close(); nil != err {
		s.log.Warn().Err(err).Msg("unable to unregister metrics")
	}
	if err := s.transport.Stop(); nil != err {
		return fmt.Errorf("unable to stop transport: %w", err)
	}
	s.log.Info().Msg("session closed")
	return nil
}
