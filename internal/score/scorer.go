package score

import (
	"time"

	"git.lost.host/meutraa/handbeat/internal/game"
	"github.com/google/uuid"
)

// Scorer persists finished sessions per chart.
type Scorer interface {
	Init() error
	Deinit()

	// Save the result of this performance
	Save(chart *game.Chart, session uuid.UUID, result game.GameResult) error

	// Load up previous results for the chart, newest first
	Load(chart *game.Chart) ([]History, error)

	// Best previous result for the chart, nil when never played
	Best(chart *game.Chart) (*History, error)
}

type History struct {
	Sum      string
	Session  uuid.UUID
	Result   game.GameResult
	PlayedAt time.Time
}
