package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"git.lost.host/meutraa/handbeat/internal/audio"
	"git.lost.host/meutraa/handbeat/internal/config"
	"git.lost.host/meutraa/handbeat/internal/game"
	"git.lost.host/meutraa/handbeat/internal/input"
	"git.lost.host/meutraa/handbeat/internal/onset"
	"git.lost.host/meutraa/handbeat/internal/parser"
	"git.lost.host/meutraa/handbeat/internal/pose"
	"git.lost.host/meutraa/handbeat/internal/render"
	"git.lost.host/meutraa/handbeat/internal/score"
	"git.lost.host/meutraa/handbeat/internal/session"
	"github.com/eiannone/keyboard"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Silence kept after the last note when no audio decides the track length
const trailingSilence = 2.0

type Program struct {
	Config    config.Config
	Parser    parser.Parser
	Scorer    score.Scorer
	Renderer  render.Renderer
	Generator *onset.Generator
	Log       zerolog.Logger

	audioFile, chartFile string

	chart     *game.Chart
	transport audio.Transport
	keyboard  *input.Keyboard
	session   *session.Session

	result *game.GameResult
	best   *score.History
}

// findSong picks the audio and chart files out of a song directory.
func findSong(dir string) (audioFile, chartFile string, err error) {
	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch {
		case audio.Supported(p) && audioFile == "":
			audioFile = p
		case parser.Chart(p) && chartFile == "":
			chartFile = p
		}
		return nil
	})
	if nil != err {
		return "", "", fmt.Errorf("unable to walk song directory: %w", err)
	}
	if audioFile == "" && chartFile == "" {
		return "", "", errors.New("unable to find audio or a chart in given directory")
	}
	return audioFile, chartFile, nil
}

// chartLength is how long a chart plays without audio.
func chartLength(c *game.Chart) float64 {
	end := 0.0
	for _, n := range c.Notes {
		if a := c.Activate(n); a.EndTime > end {
			end = a.EndTime
		}
	}
	return end + trailingSilence
}

func selectChart(charts []*game.Chart, keys <-chan keyboard.KeyEvent) (*game.Chart, error) {
	if len(charts) == 0 {
		return nil, fmt.Errorf("%w: no playable charts", game.ErrInvalidChart)
	}
	if len(charts) == 1 {
		return charts[0], nil
	}

	// Difficulty selection
	for i, c := range charts {
		fmt.Printf("%2v) %5v  %v\n", i, len(c.Notes), c.Difficulty)
	}
	key := <-keys
	if key.Key == keyboard.KeyEsc || key.Key == keyboard.KeyCtrlC {
		return nil, input.ErrQuit
	}
	index, err := strconv.ParseInt(string(key.Rune), 10, 64)
	if nil != err || index < 0 || index > int64(len(charts)-1) {
		return nil, fmt.Errorf("no chart at %q", key.Rune)
	}
	return charts[index], nil
}

func (p *Program) generate(ctx context.Context, keys <-chan keyboard.KeyEvent) (*game.Chart, error) {
	p.Log.Info().Str("audio", p.audioFile).Float64("bpm", p.Config.BPM).Msg("generating chart")
	fmt.Printf("Analysing %v, Esc to cancel\n", filepath.Base(p.audioFile))

	buf, err := audio.Load(p.audioFile)
	if nil != err {
		return nil, fmt.Errorf("unable to load audio: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	var chart *game.Chart
	g.Go(func() error {
		defer close(done)
		c, err := p.Generator.Generate(gctx, buf.Samples, buf.SampleRate, p.Config.BPM, filepath.Base(p.audioFile))
		chart = c
		return err
	})
	g.Go(func() error {
		for {
			select {
			case <-done:
				return nil
			case <-gctx.Done():
				return nil
			case ev, ok := <-keys:
				if !ok {
					keys = nil
					continue
				}
				if ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC {
					return input.ErrQuit
				}
			}
		}
	})
	if err := g.Wait(); nil != err {
		return nil, err
	}
	chart.AudioSrc = filepath.Base(p.audioFile)
	return chart, nil
}

func (p *Program) loadChart(ctx context.Context, keys <-chan keyboard.KeyEvent) error {
	if p.Config.Song == "" {
		p.chart = parser.Sample()
		return nil
	}

	var err error
	p.audioFile, p.chartFile, err = findSong(p.Config.Song)
	if nil != err {
		return err
	}

	if p.chartFile == "" {
		p.chart, err = p.generate(ctx, keys)
		return err
	}

	charts, err := p.Parser.Parse(p.chartFile)
	if nil != err {
		return err
	}
	p.chart, err = selectChart(charts, keys)
	if nil != err {
		return err
	}

	// Prefer the audio the chart names
	if p.chart.AudioSrc != "" {
		named := filepath.Join(filepath.Dir(p.chartFile), p.chart.AudioSrc)
		if _, err := os.Stat(named); nil == err && audio.Supported(named) {
			p.audioFile = named
		}
	}
	return nil
}

func (p *Program) openTransport() error {
	if p.audioFile == "" {
		p.Log.Info().Str("chart", p.chart.Title).Msg("no audio, playing silently")
		p.transport = audio.NewClock(chartLength(p.chart))
		return nil
	}
	t, err := audio.NewSpeaker(p.audioFile, p.Log)
	if nil != err {
		return err
	}
	p.transport = t
	return nil
}

// Init loads the chart and prepares the session, before the terminal is
// taken over.
func (p *Program) Init(ctx context.Context, keys <-chan keyboard.KeyEvent) error {
	if err := p.Scorer.Init(); nil != err {
		return err
	}
	if err := p.loadChart(ctx, keys); nil != err {
		if errors.Is(err, input.ErrQuit) {
			p.Log.Info().Msg("left before playing")
			return nil
		}
		return err
	}
	p.Log.Info().
		Str("chart", p.chart.Title).
		Str("artist", p.chart.Artist).
		Int("notes", len(p.chart.Notes)).
		Float64("bpm", p.chart.BPM).
		Msg("chart loaded")

	if err := p.openTransport(); nil != err {
		return err
	}

	var err error
	p.keyboard, err = input.NewKeyboard(p.Config.Keys, input.WithLogger(p.Log))
	if nil != err {
		return err
	}
	tracker := pose.NewTracker(p.keyboard,
		pose.WithSensitivity(p.Config.Sensitivity),
		pose.WithConfidence(p.Config.Confidence),
		pose.WithLogger(p.Log),
	)
	p.session, err = session.New(p.chart, p.transport, tracker,
		session.WithLogger(p.Log),
		session.OnResult(p.save),
	)
	return err
}

// save runs inside the session tick.
func (p *Program) save(id uuid.UUID, result game.GameResult) {
	best, err := p.Scorer.Best(p.chart)
	if nil != err {
		p.Log.Warn().Err(err).Msg("unable to load best score")
	}
	p.best = best
	if err := p.Scorer.Save(p.chart, id, result); nil != err {
		p.Log.Error().Err(err).Msg("unable to save score")
	}
}

func (p *Program) play(ctx context.Context) {
	started := false
	p.Renderer.RenderLoop(p.Config.Delay, func(startTime time.Time, duration time.Duration) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if !started && duration >= 0 {
			started = true
			if err := p.transport.Start(); nil != err {
				p.Log.Error().Err(err).Msg("unable to start audio")
				return false
			}
		}

		snap, result := p.session.Tick(pose.Frame{Time: duration}, duration.Milliseconds())
		p.Renderer.DrawField(&snap)
		p.Renderer.DrawHUD(p.chart, &snap)
		if nil != result {
			p.result = result
			return false
		}
		return true
	})
}

// round pumps keys into the keyboard while the chart plays, until it ends or
// a key stops it.
func (p *Program) round(ctx context.Context, keys <-chan keyboard.KeyEvent) error {
	pumpCtx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	g, gctx := errgroup.WithContext(pumpCtx)
	g.Go(func() error {
		if err := p.keyboard.Run(gctx, keys); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer stopPump()
		p.play(gctx)
		return nil
	})
	return g.Wait()
}

// Run plays the session, from the top again whenever Tab is pressed. Esc
// leaves early without a result. Nothing is played when Init was left early.
func (p *Program) Run(ctx context.Context, keys <-chan keyboard.KeyEvent) error {
	if nil == p.session {
		return nil
	}
	if err := p.Renderer.Init(); nil != err {
		return err
	}
	defer func() {
		// Restore the terminal state
		if err := p.Renderer.Deinit(); nil != err {
			p.Log.Warn().Err(err).Msg("unable to restore terminal")
		}
	}()

	err := p.round(ctx, keys)
	for errors.Is(err, input.ErrRestart) {
		if err = p.session.Restart(); nil != err {
			break
		}
		p.Log.Info().Str("chart", p.chart.Title).Msg("restarting")
		err = p.round(ctx, keys)
	}

	if err := p.session.Close(); nil != err {
		p.Log.Warn().Err(err).Msg("unable to close session")
	}
	if errors.Is(err, input.ErrQuit) {
		p.Log.Info().Msg("left before the end")
		return nil
	}
	if nil != err {
		return err
	}

	if nil != p.result {
		p.Renderer.DrawResult(p.chart, *p.result, p.best)
		select {
		case <-keys:
		case <-ctx.Done():
		}
	}
	return nil
}

func (p *Program) Deinit() {
	if nil != p.transport {
		if err := p.transport.Dispose(); nil != err {
			p.Log.Warn().Err(err).Msg("unable to dispose audio")
		}
	}
	p.Scorer.Deinit()
}
