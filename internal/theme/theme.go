package theme

import (
	"git.lost.host/meutraa/handbeat/internal/game"
	"git.lost.host/meutraa/handbeat/internal/pose"
)

type Theme interface {
	RenderNote(lane int, t game.NoteType, dir game.SwipeDirection) string
	RenderHoldBody(lane int) string
	RenderHitField(lane int) string
	RenderJudgement(j game.Judgement) string
	RenderHand(h pose.Handedness) string
}
