package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"git.lost.host/meutraa/handbeat/internal/config"
	"git.lost.host/meutraa/handbeat/internal/logging"
	"git.lost.host/meutraa/handbeat/internal/onset"
	"git.lost.host/meutraa/handbeat/internal/parser"
	"git.lost.host/meutraa/handbeat/internal/render"
	"git.lost.host/meutraa/handbeat/internal/score"
	"git.lost.host/meutraa/handbeat/internal/theme"
	"github.com/eiannone/keyboard"
)

func main() {
	if err := run(); nil != err {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse(os.Args[1:])
	if nil != err {
		return err
	}

	log, closer, err := logging.Open(cfg.LogLevel, cfg.LogFile)
	if nil != err {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	generatorOpts := []onset.Option{onset.WithLogger(log)}
	if cfg.Seed != 0 {
		generatorOpts = append(generatorOpts, onset.WithSeed(cfg.Seed))
	}

	// Ensure our Default implementations are used as interfaces
	p := &Program{
		Config:    cfg,
		Parser:    &parser.DefaultParser{Log: log},
		Scorer:    &score.DefaultScorer{Path: cfg.Database, Log: log},
		Renderer:  &render.DefaultRenderer{Theme: &theme.DefaultTheme{}, FramePeriod: cfg.FramePeriod},
		Generator: onset.New(generatorOpts...),
		Log:       log,
	}

	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			log.Warn().Err(err).Msg("unable to close keyboard")
		}
	}()

	defer p.Deinit()
	if err := p.Init(ctx, keys); nil != err {
		return err
	}
	return p.Run(ctx, keys)
}
