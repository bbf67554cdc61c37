package pose

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handAt(x, y, z float64) Hand {
	var h Hand
	for i := range h {
		h[i] = Landmark{X: x, Y: y, Z: z}
	}
	return h
}

func TestSmoothColdStart(t *testing.T) {
	var history History
	sample := handAt(0.3, 0.4, -0.1)
	out := Smooth(sample, &history, 0.5)
	assert.Equal(t, sample, out)
	assert.Equal(t, 1, history.Len())
}

func TestSmoothEMA(t *testing.T) {
	var history History
	Smooth(handAt(0, 0, 0), &history, 0.5)
	out := Smooth(handAt(1, 1, 1), &history, 0.5)
	assert.Equal(t, handAt(0.5, 0.5, 0.5), out)

	out = Smooth(handAt(1, 1, 1), &history, 0.5)
	assert.Equal(t, handAt(0.75, 0.75, 0.75), out)

	last, ok := history.Last()
	require.True(t, ok)
	assert.Equal(t, out, last)
}

func TestHistoryIsBounded(t *testing.T) {
	var history History
	for i := 0; i < 12; i++ {
		history.Push(handAt(float64(i), 0, 0))
	}
	assert.Equal(t, HistorySize, history.Len())
	last, _ := history.Last()
	assert.Equal(t, 11.0, last[0].X)

	history.Reset()
	_, ok := history.Last()
	assert.False(t, ok)
}

func TestGameXRoundTrip(t *testing.T) {
	for _, x := range []float64{-3, -1, 1, 3} {
		assert.InDelta(t, x, GameX(Landmark{X: NormalizedX(x)}), 1e-9)
	}
	assert.Equal(t, 0.0, GameX(Landmark{X: 0.5}))
	assert.Equal(t, 5.0, GameY(Landmark{Y: 0}))
}

func TestPresent(t *testing.T) {
	var h HandLandmarks
	assert.Empty(t, h.Present())

	h.Right = handAt(0.2, 0.2, 0)
	hands := h.Present()
	require.Len(t, hands, 1)
	assert.Equal(t, &h.Right, hands[0])

	h.Left = handAt(0.7, 0.2, 0)
	assert.Len(t, h.Present(), 2)
}

type scriptedSource struct {
	calls      int
	detections []Detection
	err        error
}

func (s *scriptedSource) Detect(frame Frame, timestampMs int64) ([]Detection, error) {
	s.calls++
	return s.detections, s.err
}

func TestTrackerSkipsUnchangedFrames(t *testing.T) {
	src := &scriptedSource{detections: []Detection{
		{Landmarks: handAt(0.2, 0.5, 0), Handedness: RightHand, Score: 0.9},
	}}
	tracker := NewTracker(src)

	first := tracker.Sample(Frame{Time: 10 * time.Millisecond}, 100)
	second := tracker.Sample(Frame{Time: 10 * time.Millisecond}, 116)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first, second)

	tracker.Sample(Frame{Time: 20 * time.Millisecond}, 132)
	assert.Equal(t, 2, src.calls)
}

func TestTrackerSlotsAndConfidence(t *testing.T) {
	src := &scriptedSource{detections: []Detection{
		{Landmarks: handAt(0.2, 0.5, 0), Handedness: RightHand, Score: 0.9},
		{Landmarks: handAt(0.8, 0.5, 0), Handedness: LeftHand, Score: 0.3},
	}}
	tracker := NewTracker(src, WithConfidence(0.5))

	out := tracker.Sample(Frame{Time: 1}, 0)
	assert.Equal(t, handAt(0.2, 0.5, 0), out.Right)
	assert.True(t, out.Left.IsEmpty())

	src.detections = []Detection{
		{Landmarks: handAt(0.4, 0.5, 0), Handedness: RightHand, Score: 0.9},
	}
	out = tracker.Sample(Frame{Time: 2}, 16)
	assert.InDelta(t, 0.3, out.Right[PointerIndex].X, 1e-9)
}

func TestTrackerReset(t *testing.T) {
	src := &scriptedSource{detections: []Detection{
		{Landmarks: handAt(0.2, 0.5, 0), Handedness: RightHand, Score: 0.9},
	}}
	tracker := NewTracker(src)
	tracker.Sample(Frame{Time: 1}, 0)

	tracker.Reset()
	src.detections = []Detection{
		{Landmarks: handAt(0.4, 0.5, 0), Handedness: RightHand, Score: 0.9},
	}
	out := tracker.Sample(Frame{Time: 1}, 16)
	assert.Equal(t, 2, src.calls, "same frame is sampled again")
	assert.Equal(t, handAt(0.4, 0.5, 0), out.Right, "no history to blend with")
}

func TestTrackerSourceErrorMeansNoHands(t *testing.T) {
	src := &scriptedSource{err: errors.New("camera unplugged")}
	tracker := NewTracker(src)
	out := tracker.Sample(Frame{Time: 1}, 0)
	assert.Empty(t, out.Present())

	nilSource := NewTracker(nil)
	out = nilSource.Sample(Frame{Time: 1}, 0)
	assert.Empty(t, out.Present())
}
