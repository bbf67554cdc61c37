package render

import (
	"time"

	"git.lost.host/meutraa/handbeat/internal/game"
	"git.lost.host/meutraa/handbeat/internal/score"
	"git.lost.host/meutraa/handbeat/internal/session"
)

type Renderer interface {
	Init() error
	Deinit() error
	AddDecoration(col, row int, content string, frames int)
	RenderLoop(delay time.Duration, render func(startTime time.Time, duration time.Duration) bool)
	Fill(row, column int, message string)
	DrawField(snap *session.Snapshot)
	DrawHUD(chart *game.Chart, snap *session.Snapshot)
	DrawResult(chart *game.Chart, result game.GameResult, best *score.History)
}
