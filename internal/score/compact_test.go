package score

import (
	"testing"

	"git.lost.host/meutraa/handbeat/internal/game"
	"github.com/stretchr/testify/assert"
)

var compactTests = []struct {
	counts  map[game.Judgement]int
	compact []int
}{
	{
		counts:  map[game.Judgement]int{game.Perfect: 0, game.Great: 0, game.Good: 0, game.Miss: 0},
		compact: []int{0, 0, 0, 0},
	},
	{
		counts:  map[game.Judgement]int{game.Perfect: 12, game.Great: 3, game.Good: 1, game.Miss: 7},
		compact: []int{12, 3, 1, 7},
	},
}

func TestCompactJudgements(t *testing.T) {
	for _, test := range compactTests {
		assert.Equal(t, test.compact, compactJudgements(test.counts))
	}
	// Missing grades count as zero
	assert.Equal(t, []int{2, 0, 0, 1}, compactJudgements(map[game.Judgement]int{game.Perfect: 2, game.Miss: 1}))
}

func TestUncompactJudgements(t *testing.T) {
	for _, test := range compactTests {
		assert.Equal(t, test.counts, uncompactJudgements(test.compact))
	}
	// Older rows may be short
	assert.Equal(t,
		map[game.Judgement]int{game.Perfect: 4, game.Great: 0, game.Good: 0, game.Miss: 0},
		uncompactJudgements([]int{4}),
	)
}
