// Package audio exposes the playback clock the game is timed against and
// decodes songs into sample buffers for chart generation.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Transport is the authoritative playback clock. CurrentTime never goes
// backwards while playing.
type Transport interface {
	Start() error
	Stop() error
	Dispose() error

	// Seconds since playback start
	CurrentTime() float64
	// Length of the loaded track in seconds
	BufferDuration() float64
	// Moves playback to t seconds
	Seek(t float64) error
}

// Supported reports whether path has an extension Open can decode.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".ogg", ".wav":
		return true
	}
	return false
}

// Open decodes path based on its extension.
func Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, beep.Format{}, fmt.Errorf("unable to open audio: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if nil != err {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unable to decode %v: %w", path, err)
	}
	return streamer, format, nil
}

// Buffer is a fully decoded mono signal.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// ReadAll drains s keeping the first channel.
func ReadAll(s beep.Streamer, format beep.Format) (*Buffer, error) {
	buf := &Buffer{SampleRate: int(format.SampleRate)}
	chunk := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			buf.Samples = append(buf.Samples, frame[0])
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); nil != err {
		return nil, fmt.Errorf("unable to read audio: %w", err)
	}
	return buf, nil
}

// Load decodes the whole file at path.
func Load(path string) (*Buffer, error) {
	streamer, format, err := Open(path)
	if nil != err {
		return nil, err
	}
	defer streamer.Close()
	return ReadAll(streamer, format)
}
