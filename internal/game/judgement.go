package game

import (
	"fmt"
	"math"
)

// Judgement grades, strictest first.
type Judgement int

const (
	Perfect Judgement = iota
	Great
	Good
	Miss
)

// Judgements lists every grade in order of strictness.
var Judgements = [...]Judgement{Perfect, Great, Good, Miss}

// The Miss window is the time after which an unjudged note is missed.
var windows = [...]float64{0.05, 0.10, 0.15, 0.20}

var values = [...]float64{100, 70, 40, 0}

var names = [...]string{"PERFECT", "GREAT", "GOOD", "MISS"}

const (
	GoodWindow    = 0.15
	MissThreshold = 0.20
)

// Window is the largest absolute timing error, in seconds, for a grade.
func (j Judgement) Window() float64 {
	return windows[j]
}

// Value is the base score before the combo bonus.
func (j Judgement) Value() float64 {
	return values[j]
}

func (j Judgement) String() string {
	if j < Perfect || j > Miss {
		return "UNKNOWN"
	}
	return names[j]
}

func (j Judgement) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

func (j *Judgement) UnmarshalText(b []byte) error {
	for i, n := range names {
		if n == string(b) {
			*j = Judgement(i)
			return nil
		}
	}
	return fmt.Errorf("unknown judgement %q", string(b))
}

// Classify grades a reachable hit. ok is false when the error is outside the
// Good window.
func Classify(timeError float64) (Judgement, bool) {
	d := math.Abs(timeError)
	for _, j := range Judgements[:Miss] {
		if d <= j.Window() {
			return j, true
		}
	}
	return Miss, false
}

// ComboMultiplier steps by 10% every 10 combo.
func ComboMultiplier(combo int) float64 {
	return 1 + math.Floor(float64(combo)/10)*0.1
}

// GameResult is produced once per session.
type GameResult struct {
	Score      int               `json:"score"`
	MaxCombo   int               `json:"maxCombo"`
	Judgements map[Judgement]int `json:"judgements"`
}
