package pose

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultSensitivity = 0.5
	DefaultConfidence  = 0.5
)

// Tracker samples a Source once per new video frame and keeps a smoothing
// history per hand slot.
type Tracker struct {
	source      Source
	sensitivity float64
	confidence  float64
	log         zerolog.Logger

	left, right History

	sampled   bool
	lastFrame time.Duration
	current   HandLandmarks
}

type TrackerOption func(t *Tracker)

func WithSensitivity(alpha float64) TrackerOption {
	return func(t *Tracker) { t.sensitivity = alpha }
}

func WithConfidence(threshold float64) TrackerOption {
	return func(t *Tracker) { t.confidence = threshold }
}

func WithLogger(log zerolog.Logger) TrackerOption {
	return func(t *Tracker) { t.log = log }
}

func NewTracker(source Source, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		source:      source,
		sensitivity: DefaultSensitivity,
		confidence:  DefaultConfidence,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Sample returns the smoothed hands for frame. When the frame has not advanced
// since the previous call the source is not queried again.
func (t *Tracker) Sample(frame Frame, timestampMs int64) HandLandmarks {
	if t.sampled && frame.Time == t.lastFrame {
		return t.current
	}
	t.sampled = true
	t.lastFrame = frame.Time

	var detections []Detection
	if nil != t.source {
		var err error
		detections, err = t.source.Detect(frame, timestampMs)
		if nil != err {
			// No pose data this frame is the same as no hands
			t.log.Debug().Err(err).Int64("timestamp_ms", timestampMs).Msg("pose unavailable")
			detections = nil
		}
	}

	var next HandLandmarks
	for _, d := range detections {
		if d.Score <= t.confidence {
			continue
		}
		if d.Handedness == RightHand {
			next.Right = Smooth(d.Landmarks, &t.right, t.sensitivity)
		} else {
			next.Left = Smooth(d.Landmarks, &t.left, t.sensitivity)
		}
	}
	t.current = next
	return next
}

// Reset drops all smoothing state.
func (t *Tracker) Reset() {
	t.left.Reset()
	t.right.Reset()
	t.sampled = false
	t.current = HandLandmarks{}
}
