// Package onset builds a playable chart from raw audio when no authored chart
// exists. Detection is deterministic for a given buffer; lane assignment draws
// from the generator's random source and is only reproducible with a pinned seed.
package onset

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.lost.host/meutraa/handbeat/internal/game"
	"github.com/rs/zerolog"
)

const (
	DefaultThreshold = 0.08
	DefaultCutoff    = 200.0 // Hz
	DefaultQ         = 1.0

	// Beats reserved before the first generated note
	LeadInBeats = 4.0

	// Chance of keeping a lane that repeats the previous note's lane
	RepeatChance = 0.3

	// Samples between cancellation checks
	checkEvery = 1 << 16
)

type Generator struct {
	Threshold float64
	Cutoff    float64
	Q         float64

	rng *rand.Rand
	log zerolog.Logger
}

type Option func(g *Generator)

// WithRand pins the lane assignment source.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func WithLogger(log zerolog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

func New(opts ...Option) *Generator {
	g := &Generator{
		Threshold: DefaultThreshold,
		Cutoff:    DefaultCutoff,
		Q:         DefaultQ,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if nil == g.rng {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

// Generate detects onsets in samples and returns a chart of tap notes. Silence
// or an empty buffer produce a chart without notes. A cancelled context returns
// ctx.Err() and no chart.
func (g *Generator) Generate(ctx context.Context, samples []float64, sampleRate int, bpm float64, name string) (*game.Chart, error) {
	if bpm <= 0 {
		return nil, fmt.Errorf("%w: bpm %v must be positive", game.ErrInvalidChart, bpm)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %v must be positive", sampleRate)
	}

	filtered, err := g.lowPass(ctx, samples, sampleRate)
	if nil != err {
		return nil, err
	}
	onsets, err := g.detect(ctx, filtered, sampleRate, bpm)
	if nil != err {
		return nil, err
	}
	beats := Quantize(onsets, bpm)

	chart := &game.Chart{
		Title:  Title(name),
		Artist: "You!",
		BPM:    bpm,
		Notes:  g.assignLanes(beats),
	}
	g.log.Info().
		Str("chart", chart.Title).
		Float64("bpm", bpm).
		Int("onsets", len(onsets)).
		Int("notes", len(chart.Notes)).
		Msg("generated chart from audio")
	return chart, nil
}

func (g *Generator) lowPass(ctx context.Context, samples []float64, sampleRate int) ([]float64, error) {
	f := newLowPass(g.Cutoff, float64(sampleRate), g.Q)
	out := make([]float64, len(samples))
	for i, s := range samples {
		if i%checkEvery == 0 {
			if err := ctx.Err(); nil != err {
				return nil, err
			}
		}
		out[i] = f.process(s)
	}
	return out, nil
}

// detect peak picks the filtered signal and debounces onsets closer than a
// sixteenth note. Returned times are in seconds.
func (g *Generator) detect(ctx context.Context, data []float64, sampleRate int, bpm float64) ([]float64, error) {
	minGap := 60 / bpm / 4
	last := math.Inf(-1)
	onsets := []float64{}
	for i := 1; i < len(data)-1; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); nil != err {
				return nil, err
			}
		}
		if data[i] > data[i-1] && data[i] > data[i+1] && data[i] > g.Threshold {
			ts := float64(i) / float64(sampleRate)
			if ts-last > minGap {
				onsets = append(onsets, ts)
				last = ts
			}
		}
	}
	return onsets, nil
}

// Quantize snaps onset times to the nearest sixteenth note beat, removes
// duplicates and the lead-in, and sorts the result.
func Quantize(onsets []float64, bpm float64) []float64 {
	unique := make(map[float64]struct{}, len(onsets))
	for _, ts := range onsets {
		beat := ts * bpm / 60
		unique[math.Round(beat*4)/4] = struct{}{}
	}
	beats := make([]float64, 0, len(unique))
	for b := range unique {
		if b < LeadInBeats {
			continue
		}
		beats = append(beats, b)
	}
	sort.Float64s(beats)
	return beats
}

func (g *Generator) assignLanes(beats []float64) []*game.Note {
	notes := make([]*game.Note, 0, len(beats))
	lastLane := -1
	for _, beat := range beats {
		lane := g.rng.Intn(game.LaneCount)
		if lane == lastLane && g.rng.Float64() > RepeatChance {
			lane = (lane + 1) % game.LaneCount
		}
		notes = append(notes, &game.Note{
			ID:   fmt.Sprintf("gen-%v", beat),
			Type: game.Tap,
			Lane: lane,
			Beat: beat,
		})
		lastLane = lane
	}
	return notes
}

// Title strips the directory and audio extension from a file name.
func Title(name string) string {
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".mp3", ".ogg", ".wav":
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}
