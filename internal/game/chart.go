package game

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidChart = errors.New("invalid chart")

const (
	LaneCount = 4
	LaneWidth = 2.0

	AppearZ    = -20.0
	JudgementZ = 1.5
	DespawnZ   = 3.0

	// World units travelled per beat
	TravelSpeed = 5.0
)

var LaneX = [LaneCount]float64{-3, -1, 1, 3}

type Chart struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Difficulty string  `json:"difficulty,omitempty"`
	BPM        float64 `json:"bpm"`
	Offset     float64 `json:"offset"` // Seconds, negative when audio starts before beat 0
	AudioSrc   string  `json:"audioSrc"`
	Notes      []*Note `json:"notes"`
}

// Validate rejects a chart before any scheduling happens. The returned error
// wraps ErrInvalidChart.
func (c *Chart) Validate() error {
	if c.BPM <= 0 || math.IsNaN(c.BPM) || math.IsInf(c.BPM, 0) {
		return fmt.Errorf("%w: bpm %v must be positive", ErrInvalidChart, c.BPM)
	}
	if math.IsNaN(c.Offset) || math.IsInf(c.Offset, 0) {
		return fmt.Errorf("%w: offset %v", ErrInvalidChart, c.Offset)
	}
	ids := make(map[string]struct{}, len(c.Notes))
	for i, n := range c.Notes {
		if nil == n {
			return fmt.Errorf("%w: note %v is nil", ErrInvalidChart, i)
		}
		if err := n.validate(); nil != err {
			return fmt.Errorf("%w: %v", ErrInvalidChart, err)
		}
		if _, ok := ids[n.ID]; ok {
			return fmt.Errorf("%w: duplicate note id %v", ErrInvalidChart, n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	return nil
}

// BeatDuration is the length of one beat in seconds.
func (c *Chart) BeatDuration() float64 {
	return 60 / c.BPM
}

// HitTime is the transport time at which beat b reaches the judgement line.
func (c *Chart) HitTime(beat float64) float64 {
	return beat*c.BeatDuration() - c.Offset
}

// Activate binds n to transport time.
func (c *Chart) Activate(n *Note) *ActiveNote {
	start := c.HitTime(n.Beat)
	end := start
	if n.Type == Hold {
		end = start + n.Duration*c.BeatDuration()
	}
	return &ActiveNote{Note: n, StartTime: start, EndTime: end}
}

// TravelBeats is how many beats a note spends between the appear plane and
// the judgement line.
func TravelBeats() float64 {
	return math.Abs(AppearZ-JudgementZ) / TravelSpeed
}
