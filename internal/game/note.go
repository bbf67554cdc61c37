package game

import "fmt"

type NoteType string

const (
	Tap   NoteType = "tap"
	Swipe NoteType = "swipe"
	Hold  NoteType = "hold"
)

type SwipeDirection string

const (
	Left  SwipeDirection = "left"
	Right SwipeDirection = "right"
	Up    SwipeDirection = "up"
	Down  SwipeDirection = "down"
)

// Note is an authored or generated chart event. It is never mutated once the
// chart is built.
type Note struct {
	ID   string   `json:"id"`
	Type NoteType `json:"type"`
	Lane int      `json:"lane"`
	Beat float64  `json:"beat"` // Beats from song start

	Dir      SwipeDirection `json:"dir,omitempty"`      // Swipe only
	Duration float64        `json:"duration,omitempty"` // Hold only, in beats
}

func (n *Note) validate() error {
	if n.ID == "" {
		return fmt.Errorf("note at beat %v has no id", n.Beat)
	}
	if n.Lane < 0 || n.Lane >= LaneCount {
		return fmt.Errorf("note %v lane %v out of range [0, %v)", n.ID, n.Lane, LaneCount)
	}
	if n.Beat < 0 {
		return fmt.Errorf("note %v has negative beat %v", n.ID, n.Beat)
	}
	switch n.Type {
	case Tap:
	case Swipe:
		switch n.Dir {
		case Left, Right, Up, Down:
		default:
			return fmt.Errorf("swipe note %v has invalid direction %q", n.ID, n.Dir)
		}
	case Hold:
		if n.Duration <= 0 {
			return fmt.Errorf("hold note %v has non-positive duration %v", n.ID, n.Duration)
		}
	default:
		return fmt.Errorf("note %v has unknown type %q", n.ID, n.Type)
	}
	return nil
}

// ActiveNote binds a spawned note to absolute transport time.
type ActiveNote struct {
	Note      *Note
	StartTime float64 // Seconds, when the note crosses the judgement line
	EndTime   float64 // Equals StartTime unless this is a hold

	// Hold state
	IsHolding    bool
	HoldProgress float64
}
