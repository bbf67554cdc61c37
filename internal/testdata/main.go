package testdata

import (
	"encoding/json"

	"git.lost.host/meutraa/handbeat/internal/game"
)

func GetChart() (*game.Chart, error) {
	var chart game.Chart
	if err := json.Unmarshal([]byte(data), &chart); nil != err {
		return nil, err
	}
	return &chart, nil
}

const data = `{
	"title": "Fixture",
	"artist": "Tests",
	"bpm": 120,
	"offset": 0,
	"audioSrc": "fixture.ogg",
	"notes": [
		{"id": "n3", "type": "tap", "lane": 2, "beat": 6},
		{"id": "n1", "type": "tap", "lane": 0, "beat": 4},
		{"id": "n2", "type": "tap", "lane": 1, "beat": 5},
		{"id": "n4", "type": "swipe", "lane": 3, "beat": 7, "dir": "left"},
		{"id": "n5", "type": "hold", "lane": 0, "beat": 8, "duration": 2},
		{"id": "n6", "type": "tap", "lane": 3, "beat": 8}
	]
}`
