package audio

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/rs/zerolog"
)

// SpeakerTransport plays a track through the system speaker. Its clock is the
// streamer position, so it only advances while audio is actually consumed.
type SpeakerTransport struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	disposed bool
	log      zerolog.Logger
}

func NewSpeaker(path string, log zerolog.Logger) (*SpeakerTransport, error) {
	streamer, format, err := Open(path)
	if nil != err {
		return nil, err
	}
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/60)); nil != err {
		streamer.Close()
		return nil, fmt.Errorf("unable to open speaker: %w", err)
	}
	log.Info().
		Str("audio", path).
		Int("sample_rate", int(format.SampleRate)).
		Dur("length", format.SampleRate.D(streamer.Len())).
		Msg("opened audio")
	return &SpeakerTransport{streamer: streamer, format: format, log: log}, nil
}

func (s *SpeakerTransport) Start() error {
	if s.disposed {
		return fmt.Errorf("transport is disposed")
	}
	if nil == s.ctrl {
		s.ctrl = &beep.Ctrl{Streamer: s.streamer}
		speaker.Play(s.ctrl)
		return nil
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (s *SpeakerTransport) Stop() error {
	if nil == s.ctrl {
		return nil
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (s *SpeakerTransport) Dispose() error {
	if s.disposed {
		return nil
	}
	if err := s.Stop(); nil != err {
		return err
	}
	s.disposed = true
	speaker.Lock()
	err := s.streamer.Close()
	speaker.Unlock()
	return err
}

func (s *SpeakerTransport) CurrentTime() float64 {
	speaker.Lock()
	pos := s.streamer.Position()
	speaker.Unlock()
	return s.format.SampleRate.D(pos).Seconds()
}

func (s *SpeakerTransport) BufferDuration() float64 {
	return s.format.SampleRate.D(s.streamer.Len()).Seconds()
}

func (s *SpeakerTransport) Seek(t float64) error {
	if s.disposed {
		return fmt.Errorf("transport is disposed")
	}
	pos := s.format.SampleRate.N(time.Duration(t * float64(time.Second)))
	speaker.Lock()
	err := s.streamer.Seek(pos)
	speaker.Unlock()
	if nil != err {
		return fmt.Errorf("unable to seek audio: %w", err)
	}
	return nil
}
