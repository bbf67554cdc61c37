package config

import (
	"time"

	"git.lost.host/meutraa/handbeat/internal/input"
	"git.lost.host/meutraa/handbeat/internal/pose"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

type Config struct {
	Song        string
	BPM         float64
	Seed        int64
	Sensitivity float64
	Confidence  float64
	Delay       time.Duration
	FramePeriod time.Duration
	Keys        string
	Database    string
	LogLevel    string
	LogFile     string
}

func app(c *Config) *kingpin.Application {
	a := kingpin.New("handbeat", "Hand tracked rhythm game for the terminal")
	a.Version(Version)
	a.Arg("song", "Song directory with audio and optionally a .json or .sm chart, the built-in chart plays when omitted").ExistingDirVar(&c.Song)
	a.Flag("bpm", "Tempo used when generating a chart").Default("128").Short('b').Float64Var(&c.BPM)
	a.Flag("seed", "Lane assignment seed, 0 picks one").Default("0").Int64Var(&c.Seed)
	a.Flag("sensitivity", "Hand smoothing factor, 1 disables smoothing").Default("0.5").Short('s').Float64Var(&c.Sensitivity)
	a.Flag("confidence", "Minimum hand detection confidence").Default("0.5").Float64Var(&c.Confidence)
	a.Flag("delay", "Start delay").Default("1.5s").Short('d').DurationVar(&c.Delay)
	a.Flag("frame-period", "Render frame period").Default("16ms").Short('p').DurationVar(&c.FramePeriod)
	a.Flag("keys", "One key per lane").Default(input.DefaultKeys).Short('k').StringVar(&c.Keys)
	a.Flag("db", "Score history database").Default("./scores.db").StringVar(&c.Database)
	a.Flag("log-level", "Log level").Default("info").EnumVar(&c.LogLevel, "trace", "debug", "info", "warn", "error")
	a.Flag("log-file", "Log file, the terminal belongs to the game").Default("handbeat.log").StringVar(&c.LogFile)
	return a
}

// Parse reads the command line. args excludes the program name.
func Parse(args []string) (Config, error) {
	c := Config{}
	if _, err := app(&c).Parse(args); nil != err {
		return c, err
	}
	if c.Sensitivity <= 0 || c.Sensitivity > 1 {
		c.Sensitivity = pose.DefaultSensitivity
	}
	return c, nil
}
