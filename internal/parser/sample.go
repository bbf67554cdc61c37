package parser

import (
	"fmt"

	"git.lost.host/meutraa/handbeat/internal/game"
)

const (
	SampleTitle  = "Future Funk"
	SampleArtist = "Virtual Beatmaker"
	SampleAudio  = "https://cdn.jsdelivr.net/gh/kchap/HandBeatAssets/future_funk.mp3"
)

// lane, beat
var sampleNotes = [][2]float64{
	{0, 4},
	{1, 4.5},
	{2, 5},
	{3, 5.5},
	{1, 6},
	{2, 6},
	{0, 7},
	{3, 7.5},
	{0, 8},
	{1, 8},
	{2, 9},
	{3, 9},
	{0, 10},
	{3, 10.5},
	{1, 11},
	{2, 11.5},
	{0, 12},
	{1, 12.5},
	{2, 13},
	{3, 13.5},
	{0, 14},
	{3, 14},
	{1, 15},
	{2, 15.5},
	{0, 16},
	{1, 16},
	{2, 16},
	{3, 16},
}

// Sample is the built-in chart, playable without any files.
func Sample() *game.Chart {
	notes := make([]*game.Note, len(sampleNotes))
	for i, n := range sampleNotes {
		notes[i] = &game.Note{
			ID:   fmt.Sprintf("n%v", i+1),
			Type: game.Tap,
			Lane: int(n[0]),
			Beat: n[1],
		}
	}
	return &game.Chart{
		Title:    SampleTitle,
		Artist:   SampleArtist,
		BPM:      128,
		AudioSrc: SampleAudio,
		Notes:    notes,
	}
}
