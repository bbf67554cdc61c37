package theme

import (
	"fmt"

	"git.lost.host/meutraa/handbeat/internal/game"
	"git.lost.host/meutraa/handbeat/internal/pose"
)

type Color struct {
	R, G, B uint8
}

// ANSI wraps s in a 24 bit foreground color.
func (c Color) ANSI(s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(lane int, nt game.NoteType, dir game.SwipeDirection) string {
	sym := noteSym
	switch nt {
	case game.Swipe:
		sym = swipeSyms[dir]
	case game.Hold:
		sym = holdSym
	}
	return getLaneColor(lane).ANSI(sym)
}

func (t *DefaultTheme) RenderHoldBody(lane int) string {
	return getLaneColor(lane).ANSI(holdBodySym)
}

func (t *DefaultTheme) RenderHitField(lane int) string {
	return barSym
}

func (t *DefaultTheme) RenderJudgement(j game.Judgement) string {
	return judgementNames[j]
}

func (t *DefaultTheme) RenderHand(h pose.Handedness) string {
	if h == pose.LeftHand {
		return handColors[0].ANSI(handSym)
	}
	return handColors[1].ANSI(handSym)
}

const (
	noteSym     = "⬤"
	holdSym     = "◉"
	holdBodySym = "┃"
	barSym      = "━━━"
	handSym     = "✦"
)

var (
	swipeSyms = map[game.SwipeDirection]string{
		game.Left:  "◀",
		game.Right: "▶",
		game.Up:    "▲",
		game.Down:  "▼",
	}
	laneColors = [...]Color{
		{236, 30, 0},  // red
		{0, 118, 236}, // blue
		{236, 195, 0}, // yellow
		{0, 236, 128}, // green
	}
	handColors = [...]Color{
		{173, 236, 236}, // left light blue
		{236, 0, 106},   // right pink
	}
	judgementNames = map[game.Judgement]string{
		game.Perfect: "\033[1;36mPERFECT\033[0m",
		game.Great:   "  \033[1;32mGREAT\033[0m",
		game.Good:    "   \033[1;33mGOOD\033[0m",
		game.Miss:    "   \033[1;31mMISS\033[0m",
	}
)

func getLaneColor(lane int) Color {
	if lane < 0 || lane >= len(laneColors) {
		return Color{255, 255, 255}
	}
	return laneColors[lane]
}
