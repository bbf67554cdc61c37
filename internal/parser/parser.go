package parser

import "git.lost.host/meutraa/handbeat/internal/game"

type Parser interface {
	// Parse returns every playable chart in file, already validated
	Parse(file string) ([]*game.Chart, error)
}
