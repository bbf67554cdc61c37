package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger at level writing to w.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if nil != err {
		return zerolog.Nop(), fmt.Errorf("unable to parse log level: %w", err)
	}
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Open appends to the log file at path, the terminal is drawn by the
// renderer so logs never go to stdout.
func Open(level, path string) (zerolog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if nil != err {
		return zerolog.Nop(), nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log, err := New(level, zerolog.ConsoleWriter{
		Out:        f,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	})
	if nil != err {
		f.Close()
		return zerolog.Nop(), nil, err
	}
	return log, f, nil
}
