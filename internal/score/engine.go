package score

import (
	"math"
	"sort"

	"git.lost.host/meutraa/handbeat/internal/game"
	"git.lost.host/meutraa/handbeat/internal/pose"
	"github.com/rs/zerolog"
)

// Event is emitted once per resolved note. Seq increases by one per event so
// presentation can pulse on repeated judgements.
type Event struct {
	Seq       uint64
	NoteID    string
	Judgement game.Judgement
	TimeError float64
	Time      float64
}

// Engine owns the active notes and the score state. It is not safe for
// concurrent use; callers serialize access per tick.
type Engine struct {
	score    float64
	combo    int
	maxCombo int
	counts   map[game.Judgement]int

	active map[string]*game.ActiveNote
	seq    uint64
	last   *Event
	closed bool

	onEvent func(Event)
	log     zerolog.Logger
}

type EngineOption func(e *Engine)

// OnEvent registers a callback run for every resolved note.
func OnEvent(fn func(Event)) EngineOption {
	return func(e *Engine) { e.onEvent = fn }
}

func WithLogger(log zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		counts: make(map[game.Judgement]int, len(game.Judgements)),
		active: make(map[string]*game.ActiveNote),
		log:    zerolog.Nop(),
	}
	for _, j := range game.Judgements {
		e.counts[j] = 0
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spawn adds notes to the active set.
func (e *Engine) Spawn(notes ...*game.ActiveNote) {
	if e.closed {
		return
	}
	for _, n := range notes {
		e.active[n.Note.ID] = n
	}
}

// Reachable reports whether any present hand's pointer is inside lane.
func Reachable(hands *pose.HandLandmarks, lane int) bool {
	laneX := game.LaneX[lane]
	for _, hand := range hands.Present() {
		if math.Abs(pose.GameX(hand.Pointer())-laneX) < game.LaneWidth/2 {
			return true
		}
	}
	return false
}

// Judge decides a single note at currentTime. ok is false while the note
// stays undecided.
func Judge(n *game.ActiveNote, hands *pose.HandLandmarks, currentTime float64) (game.Judgement, bool) {
	timeError := currentTime - n.StartTime
	if timeError < -game.GoodWindow {
		return game.Miss, false
	}

	switch n.Note.Type {
	case game.Tap:
		if Reachable(hands, n.Note.Lane) {
			if j, ok := game.Classify(timeError); ok {
				return j, true
			}
		}
	case game.Swipe, game.Hold:
		// No gesture recognition yet, these only ever end as a late miss
	}

	if timeError > game.MissThreshold {
		return game.Miss, true
	}
	return game.Miss, false
}

// Evaluate judges every active note and applies the outcomes. Notes are
// visited in hit time order so combo milestones are reproducible.
func (e *Engine) Evaluate(hands pose.HandLandmarks, currentTime float64) []Event {
	if e.closed || len(e.active) == 0 {
		return nil
	}
	var events []Event
	for _, n := range e.Active() {
		j, ok := Judge(n, &hands, currentTime)
		if !ok {
			continue
		}
		if ev, ok := e.Resolve(n.Note.ID, j, currentTime); ok {
			events = append(events, ev)
		}
	}
	return events
}

// Resolve applies judgement j to the active note id and removes it. Unknown or
// already resolved ids are ignored.
func (e *Engine) Resolve(id string, j game.Judgement, currentTime float64) (Event, bool) {
	n, ok := e.active[id]
	if e.closed || !ok {
		return Event{}, false
	}
	delete(e.active, id)

	if j != game.Miss {
		e.combo++
		if e.combo > e.maxCombo {
			e.maxCombo = e.combo
		}
		e.score += j.Value() * game.ComboMultiplier(e.combo)
	} else {
		e.combo = 0
	}
	e.counts[j]++

	e.seq++
	ev := Event{
		Seq:       e.seq,
		NoteID:    id,
		Judgement: j,
		TimeError: currentTime - n.StartTime,
		Time:      currentTime,
	}
	e.last = &ev
	e.log.Debug().
		Str("note_id", id).
		Stringer("judgement", j).
		Float64("time_error", ev.TimeError).
		Int("combo", e.combo).
		Msg("note resolved")
	if nil != e.onEvent {
		e.onEvent(ev)
	}
	return ev, true
}

// Active returns the active notes in hit time order.
func (e *Engine) Active() []*game.ActiveNote {
	notes := make([]*game.ActiveNote, 0, len(e.active))
	for _, n := range e.active {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].StartTime != notes[j].StartTime {
			return notes[i].StartTime < notes[j].StartTime
		}
		return notes[i].Note.ID < notes[j].Note.ID
	})
	return notes
}

func (e *Engine) ActiveCount() int {
	return len(e.active)
}

func (e *Engine) Score() float64 {
	return e.score
}

func (e *Engine) Combo() int {
	return e.combo
}

func (e *Engine) MaxCombo() int {
	return e.maxCombo
}

// LastEvent is the most recent event, nil before the first judgement.
func (e *Engine) LastEvent() *Event {
	if nil == e.last {
		return nil
	}
	ev := *e.last
	return &ev
}

func (e *Engine) Counts() map[game.Judgement]int {
	counts := make(map[game.Judgement]int, len(e.counts))
	for j, c := range e.counts {
		counts[j] = c
	}
	return counts
}

func (e *Engine) Result() game.GameResult {
	return game.GameResult{
		Score:      int(math.Round(e.score)),
		MaxCombo:   e.maxCombo,
		Judgements: e.Counts(),
	}
}

// Close drops the active set and stops any further events. It is safe to
// call more than once.
func (e *Engine) Close() {
	e.closed = true
	e.active = make(map[string]*game.ActiveNote)
}
