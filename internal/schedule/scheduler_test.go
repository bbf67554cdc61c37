package schedule

import (
	"errors"
	"testing"

	"git.lost.host/meutraa/handbeat/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chart(notes ...*game.Note) *game.Chart {
	return &game.Chart{BPM: 120, Notes: notes}
}

func tap(id string, lane int, beat float64) *game.Note {
	return &game.Note{ID: id, Type: game.Tap, Lane: lane, Beat: beat}
}

func TestTravelBeats(t *testing.T) {
	assert.InDelta(t, 4.3, game.TravelBeats(), 1e-12)
}

func TestSpawnTime(t *testing.T) {
	c := chart()
	for _, b := range []float64{0, 1, 4, 4.3, 4.5, 8, 16.25, 100} {
		expected := (b - game.TravelBeats()) * 0.5
		if expected < 0 {
			expected = 0
		}
		assert.Equal(t, expected, SpawnTime(c, tap("n", 0, b)), "beat %v", b)
	}
}

func TestSpawnTimeOffset(t *testing.T) {
	c := chart()
	c.Offset = -1
	assert.InDelta(t, 3.85, SpawnTime(c, tap("n", 0, 8)), 1e-9)
	c.Offset = 1
	assert.InDelta(t, 0.85, SpawnTime(c, tap("n", 0, 8)), 1e-9)
}

func TestNewRejectsInvalidChart(t *testing.T) {
	_, err := New(&game.Chart{BPM: 0}, 10)
	assert.True(t, errors.Is(err, game.ErrInvalidChart))

	_, err = New(chart(tap("n", 7, 4)), 10)
	assert.True(t, errors.Is(err, game.ErrInvalidChart))

	_, err = New(nil, 10)
	assert.True(t, errors.Is(err, game.ErrInvalidChart))
}

func TestAdvanceUnsortedChart(t *testing.T) {
	s, err := New(chart(tap("c", 2, 12), tap("a", 0, 2), tap("b", 1, 8)), 10)
	require.NoError(t, err)

	schedule := s.Schedule()
	require.Len(t, schedule, 3)
	assert.Equal(t, "a", schedule[0].Note.ID)
	assert.Equal(t, 0.0, schedule[0].SpawnTime)
	assert.Equal(t, "c", schedule[2].Note.ID)

	spawned := s.Advance(0)
	require.Len(t, spawned, 1)
	assert.Equal(t, "a", spawned[0].Note.ID)
	assert.Equal(t, 1.0, spawned[0].StartTime)

	assert.Empty(t, s.Advance(1))

	// A stalled loop reconciles everything due in one call
	spawned = s.Advance(5)
	require.Len(t, spawned, 2)
	assert.Equal(t, "b", spawned[0].Note.ID)
	assert.Equal(t, "c", spawned[1].Note.ID)
	assert.Empty(t, s.Advance(100))
	assert.Equal(t, 0, s.Pending())

	s.Reset()
	assert.Equal(t, 3, s.Pending())
}

func TestPosition(t *testing.T) {
	c := chart()
	n := tap("n", 0, 8)
	assert.InDelta(t, game.JudgementZ, Position(c, n, 4), 1e-9)
	assert.InDelta(t, game.AppearZ, Position(c, n, SpawnTime(c, n)), 1e-9)
	assert.InDelta(t, game.JudgementZ+game.TravelSpeed, Position(c, n, 4.5), 1e-9)

	assert.True(t, Visible(Position(c, n, 3)))
	assert.False(t, Visible(Position(c, n, 0)))
	assert.False(t, Visible(Position(c, n, 10)))
}

func TestPositionOffset(t *testing.T) {
	c := chart()
	n := tap("n", 0, 8)
	assert.InDelta(t, 1.5, Position(c, n, 4), 1e-9)
	c.Offset = 0.5
	assert.InDelta(t, 6.5, Position(c, n, 4), 1e-9)
	assert.InDelta(t, game.JudgementZ, Position(c, n, c.HitTime(n.Beat)), 1e-9)
}

func TestFinished(t *testing.T) {
	s, err := New(chart(tap("a", 0, 2)), 10)
	require.NoError(t, err)

	assert.False(t, s.Finished(10, 0), "note never spawned")
	s.Advance(0)
	assert.False(t, s.Finished(9.9, 0))
	assert.False(t, s.Finished(12, 1))
	assert.True(t, s.Finished(10, 0))
}

func TestProgress(t *testing.T) {
	s, err := New(chart(), 20)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Progress(0))
	assert.Equal(t, 50.0, s.Progress(10))
	assert.Equal(t, 100.0, s.Progress(25))

	s, err = New(chart(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Progress(5))
}
