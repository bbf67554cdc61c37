package input

import (
	"context"
	"errors"
	"sync"
	"time"

	"git.lost.host/meutraa/handbeat/internal/game"
	"git.lost.host/meutraa/handbeat/internal/pose"
	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog"
)

var (
	// ErrQuit is returned by Run when the player asks to leave.
	ErrQuit = errors.New("quit requested")
	// ErrRestart is returned by Run when the player asks to play again.
	ErrRestart = errors.New("restart requested")
)

const (
	DefaultKeys = "dfjk"

	// Terminals report presses only, a press keeps the pointer on its lane
	// for this long
	DefaultHold = 150 * time.Millisecond
)

type press struct {
	lane int
	at   time.Time
}

// Keyboard is a pose.Source driven by lane keys. The latest press becomes
// the right hand pointer and a distinct earlier press still held becomes the
// left hand, so two lanes can be hit together.
type Keyboard struct {
	mu      sync.Mutex
	keys    []rune
	hold    time.Duration
	presses [2]press // newest first
	count   int
	now     func() time.Time
	log     zerolog.Logger
}

type Option func(k *Keyboard)

func WithHold(d time.Duration) Option {
	return func(k *Keyboard) { k.hold = d }
}

func WithClock(now func() time.Time) Option {
	return func(k *Keyboard) { k.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(k *Keyboard) { k.log = log }
}

func NewKeyboard(keys string, opts ...Option) (*Keyboard, error) {
	k := &Keyboard{
		keys: []rune(keys),
		hold: DefaultHold,
		now:  time.Now,
		log:  zerolog.Nop(),
	}
	if len(k.keys) != game.LaneCount {
		return nil, errors.New("need exactly one key per lane")
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Lane maps a key to its lane, -1 when r is not a lane key.
func (k *Keyboard) Lane(r rune) int {
	for i, c := range k.keys {
		if r == c {
			return i
		}
	}
	return -1
}

// Press moves the pointer onto lane.
func (k *Keyboard) Press(lane int) {
	if lane < 0 || lane >= game.LaneCount {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	p := press{lane: lane, at: k.now()}
	if k.count > 0 && k.presses[0].lane != lane {
		k.presses[1] = k.presses[0]
		k.count = 2
	} else if k.count == 0 {
		k.count = 1
	}
	k.presses[0] = p
}

func (k *Keyboard) Detect(frame pose.Frame, timestampMs int64) ([]pose.Detection, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	detections := make([]pose.Detection, 0, 2)
	for i, p := range k.presses[:k.count] {
		if now.Sub(p.at) > k.hold {
			continue
		}
		handedness := pose.RightHand
		if i > 0 {
			handedness = pose.LeftHand
		}
		var hand pose.Hand
		hand[pose.PointerIndex] = pose.Landmark{
			X: pose.NormalizedX(game.LaneX[p.lane]),
			Y: 0.5,
		}
		detections = append(detections, pose.Detection{
			Landmarks:  hand,
			Handedness: handedness,
			Score:      1,
		})
	}
	return detections, nil
}

// Run feeds key events into the keyboard until ctx is done, Esc is pressed or
// Tab asks for a restart.
func (k *Keyboard) Run(ctx context.Context, events <-chan keyboard.KeyEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if nil != ev.Err {
				k.log.Warn().Err(ev.Err).Msg("keyboard error")
				continue
			}
			if ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC {
				return ErrQuit
			}
			if ev.Key == keyboard.KeyTab {
				return ErrRestart
			}
			lane := k.Lane(ev.Rune)
			if lane < 0 {
				continue
			}
			k.log.Debug().Int("lane", lane).Msg("key press")
			k.Press(lane)
		}
	}
}
