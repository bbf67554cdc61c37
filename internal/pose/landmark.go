// Package pose models hand landmarks coming from an external pose estimator
// and turns the noisy per-frame detections into stable, smoothed hands.
package pose

import (
	"image"
	"time"
)

const (
	NumLandmarks = 21

	// Index finger tip
	PointerIndex = 8
)

// Landmark is a normalized point, x and y in [0, 1].
type Landmark struct {
	X, Y, Z float64
}

// Hand is the fixed size landmark list of one hand. The zero value is the
// "no hand" sentinel.
type Hand [NumLandmarks]Landmark

func (h *Hand) IsEmpty() bool {
	return *h == Hand{}
}

func (h *Hand) Pointer() Landmark {
	return h[PointerIndex]
}

// GameX maps a normalized x coordinate into lane space. The camera image is
// mirrored, so 0.5 is the centre and smaller x is further right.
func GameX(l Landmark) float64 {
	return (0.5 - l.X) * 10
}

func GameY(l Landmark) float64 {
	return (0.5 - l.Y) * 10
}

// NormalizedX is the inverse of GameX.
func NormalizedX(gameX float64) float64 {
	return 0.5 - gameX/10
}

// HandLandmarks is one smoothed snapshot. Absent hands hold the empty sentinel.
type HandLandmarks struct {
	Left, Right Hand
}

// Present returns the hands that are not the sentinel.
func (h *HandLandmarks) Present() []*Hand {
	hands := make([]*Hand, 0, 2)
	if !h.Left.IsEmpty() {
		hands = append(hands, &h.Left)
	}
	if !h.Right.IsEmpty() {
		hands = append(hands, &h.Right)
	}
	return hands
}

type Handedness string

const (
	LeftHand  Handedness = "Left"
	RightHand Handedness = "Right"
)

// Detection is a single hand reported by the estimator.
type Detection struct {
	Landmarks  Hand
	Handedness Handedness
	Score      float64
}

// Frame is a video frame handed to the estimator. Time is the video clock and
// only changes when a new frame is available.
type Frame struct {
	Time  time.Duration
	Image image.Image
}

// Source is the external hand landmark estimator.
type Source interface {
	Detect(frame Frame, timestampMs int64) ([]Detection, error)
}
