package session

import (
	"errors"
	"testing"
	"time"

	"git.lost.host/meutraa/handbeat/internal/audio"
	"git.lost.host/meutraa/handbeat/internal/game"
	"git.lost.host/meutraa/handbeat/internal/pose"
	"git.lost.host/meutraa/handbeat/internal/score"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// laneSource always reports one right hand pointing at lane, or nothing when
// lane is negative.
type laneSource struct {
	lane int
}

func (s *laneSource) Detect(frame pose.Frame, timestampMs int64) ([]pose.Detection, error) {
	if s.lane < 0 {
		return nil, nil
	}
	var hand pose.Hand
	hand[pose.PointerIndex] = pose.Landmark{X: pose.NormalizedX(game.LaneX[s.lane]), Y: 0.5}
	return []pose.Detection{{Landmarks: hand, Handedness: pose.RightHand, Score: 0.9}}, nil
}

type fakeTransport struct {
	time, duration float64
	stops          int
	seeks          []float64
}

func (f *fakeTransport) Start() error { return nil }
func (f *fakeTransport) Stop() error { f.stops++; return nil }
func (f *fakeTransport) Dispose() error { return nil }
func (f *fakeTransport) CurrentTime() float64 { return f.time }
func (f *fakeTransport) BufferDuration() float64 { return f.duration }
func (f *fakeTransport) Seek(t float64) error {
	f.seeks = append(f.seeks, t)
	f.time = t
	return nil
}

func single(beat float64) *game.Chart {
	return &game.Chart{
		Title: "Single",
		BPM:   120,
		Notes: []*game.Note{{ID: "a", Type: game.Tap, Lane: 0, Beat: beat}},
	}
}

// tick advances the video frame every call so the tracker samples again.
func tick(s *Session, frame *int) (Snapshot, *game.GameResult) {
	*frame++
	return s.Tick(pose.Frame{Time: time.Duration(*frame) * time.Millisecond}, int64(*frame))
}

func TestPerfectRun(t *testing.T) {
	transport := &fakeTransport{duration: 2.5}
	var events []score.Event
	var results []game.GameResult
	s, err := New(single(4), transport, pose.NewTracker(&laneSource{lane: 0}),
		OnEvent(func(ev score.Event) { events = append(events, ev) }),
		OnResult(func(id uuid.UUID, r game.GameResult) { results = append(results, r) }),
	)
	require.NoError(t, err)
	frame := 0

	transport.time = 1.0
	snap, result := tick(s, &frame)
	assert.Nil(t, result)
	require.Len(t, snap.Notes, 1, "spawned from the start of the track")
	assert.Equal(t, "a", snap.Notes[0].ID)
	assert.InDelta(t, game.JudgementZ-2*game.TravelSpeed, snap.Notes[0].Z, 1e-9)
	assert.InDelta(t, 40.0, snap.Progress, 1e-9)
	assert.Empty(t, events, "too early to judge")

	transport.time = 2.0
	snap, result = tick(s, &frame)
	assert.Nil(t, result)
	require.Len(t, events, 1)
	assert.Equal(t, game.Perfect, events[0].Judgement)
	assert.Equal(t, 100, snap.Score)
	assert.Equal(t, 1, snap.Combo)
	require.NotNil(t, snap.Last)
	assert.Equal(t, "a", snap.Last.NoteID)
	assert.Empty(t, snap.Notes)
	assert.False(t, snap.Finished)
	assert.False(t, snap.Hands.Right.IsEmpty())

	transport.time = 2.5
	snap, result = tick(s, &frame)
	require.NotNil(t, result)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 1, result.MaxCombo)
	assert.Equal(t, 1, result.Judgements[game.Perfect])
	assert.True(t, snap.Finished)

	transport.time = 3.0
	_, result = tick(s, &frame)
	assert.Nil(t, result, "a result fires once")
	assert.Len(t, results, 1)
	assert.NotNil(t, s.Result())
}

func TestLingeringNoteDelaysResult(t *testing.T) {
	now := time.Unix(0, 0)
	clock := audio.NewClockAt(3, func() time.Time { return now })
	require.NoError(t, clock.Start())

	// Hits at 4s, after the track has ended
	s, err := New(single(8), clock, pose.NewTracker(&laneSource{lane: -1}))
	require.NoError(t, err)
	frame := 0

	clock.Seek(3.5)
	snap, result := tick(s, &frame)
	assert.Nil(t, result)
	assert.Len(t, snap.Notes, 1)

	clock.Seek(4.1)
	_, result = tick(s, &frame)
	assert.Nil(t, result, "note still inside its window")

	clock.Seek(4.25)
	snap, result = tick(s, &frame)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 1, result.Judgements[game.Miss])
	assert.Equal(t, 100.0, snap.Progress)
}

func TestResultWaitsForUnspawnedNotes(t *testing.T) {
	transport := &fakeTransport{duration: 1}
	s, err := New(single(40), transport, pose.NewTracker(&laneSource{lane: -1}))
	require.NoError(t, err)
	frame := 0

	transport.time = 1
	_, result := tick(s, &frame)
	assert.Nil(t, result)
}

func TestEmptyChartFinishesAtTrackEnd(t *testing.T) {
	transport := &fakeTransport{duration: 1}
	s, err := New(&game.Chart{Title: "Empty", BPM: 120}, transport, pose.NewTracker(nil))
	require.NoError(t, err)
	frame := 0

	transport.time = 0.5
	_, result := tick(s, &frame)
	assert.Nil(t, result)

	transport.time = 1
	_, result = tick(s, &frame)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Score)
}

func TestCloseStopsEverything(t *testing.T) {
	transport := &fakeTransport{duration: 10}
	fired := 0
	s, err := New(single(4), transport, pose.NewTracker(&laneSource{lane: 0}),
		OnEvent(func(score.Event) { fired++ }),
		OnResult(func(uuid.UUID, game.GameResult) { fired++ }),
	)
	require.NoError(t, err)
	frame := 0

	transport.time = 1
	snap, _ := tick(s, &frame)
	require.Len(t, snap.Notes, 1)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, transport.stops)

	transport.time = 2
	snap, result := tick(s, &frame)
	assert.Empty(t, snap.Notes)
	assert.Nil(t, result)

	transport.time = 20
	_, result = tick(s, &frame)
	assert.Nil(t, result)
	assert.Zero(t, fired)
	assert.Nil(t, s.Result())
}

func TestInvalidChart(t *testing.T) {
	chart := single(4)
	chart.Notes[0].Lane = 4
	_, err := New(chart, &fakeTransport{duration: 1}, pose.NewTracker(nil))
	assert.True(t, errors.Is(err, game.ErrInvalidChart))

	_, err = New(&game.Chart{BPM: 0}, &fakeTransport{duration: 1}, pose.NewTracker(nil))
	assert.True(t, errors.Is(err, game.ErrInvalidChart))
}

func TestNilTrackerAndTransport(t *testing.T) {
	_, err := New(single(4), nil, pose.NewTracker(nil))
	assert.Error(t, err)

	transport := &fakeTransport{duration: 10, time: 1}
	s, err := New(single(4), transport, nil)
	require.NoError(t, err)
	frame := 0
	snap, _ := tick(s, &frame)
	assert.Empty(t, snap.Hands.Present())
	require.Len(t, snap.Notes, 1)
}

func TestRestart(t *testing.T) {
	transport := &fakeTransport{duration: 2.5}
	var results []uuid.UUID
	s, err := New(single(4), transport, pose.NewTracker(&laneSource{lane: 0}),
		OnResult(func(id uuid.UUID, r game.GameResult) { results = append(results, id) }),
	)
	require.NoError(t, err)
	first := s.ID
	frame := 0

	transport.time = 2.0
	tick(s, &frame)
	transport.time = 2.5
	_, result := tick(s, &frame)
	require.NotNil(t, result)

	require.NoError(t, s.Restart())
	assert.Equal(t, []float64{0}, transport.seeks)
	assert.Equal(t, 1, transport.stops)
	assert.NotEqual(t, first, s.ID)
	assert.Nil(t, s.Result())

	transport.time = 1.0
	snap, result := tick(s, &frame)
	assert.Nil(t, result)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.MaxCombo)
	assert.Nil(t, snap.Last)
	require.Len(t, snap.Notes, 1, "the chart spawns again")

	transport.time = 2.0
	tick(s, &frame)
	transport.time = 2.5
	_, result = tick(s, &frame)
	require.NotNil(t, result)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, []uuid.UUID{first, s.ID}, results)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Restart(), ErrClosed)
}

func TestHoldTail(t *testing.T) {
	transport := &fakeTransport{duration: 10, time: 1}
	chart := &game.Chart{BPM: 120, Notes: []*game.Note{
		{ID: "h", Type: game.Hold, Lane: 2, Beat: 4, Duration: 2},
	}}
	s, err := New(chart, transport, pose.NewTracker(nil))
	require.NoError(t, err)
	frame := 0

	snap, _ := tick(s, &frame)
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, snap.Notes[0].Z-2*game.TravelSpeed, snap.Notes[0].TailZ)
}
