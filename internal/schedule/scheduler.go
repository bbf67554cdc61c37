// Package schedule drives note lifetimes from the audio transport clock.
// Everything is derived from transport time so a stalled render loop catches
// up on its next tick without drift.
package schedule

import (
	"fmt"
	"sort"

	"git.lost.host/meutraa/handbeat/internal/game"
)

type Entry struct {
	Note      *game.Note
	SpawnTime float64
}

type Scheduler struct {
	chart    *game.Chart
	duration float64

	// Sorted by spawn time, computed once
	entries []Entry
	next    int
}

// New validates chart and computes its spawn schedule. duration is the length
// of the track in seconds.
func New(chart *game.Chart, duration float64) (*Scheduler, error) {
	if nil == chart {
		return nil, fmt.Errorf("%w: no chart", game.ErrInvalidChart)
	}
	if err := chart.Validate(); nil != err {
		return nil, err
	}

	entries := make([]Entry, len(chart.Notes))
	for i, n := range chart.Notes {
		entries[i] = Entry{Note: n, SpawnTime: SpawnTime(chart, n)}
	}
	// Authored charts are not required to be in beat order
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].SpawnTime != entries[j].SpawnTime {
			return entries[i].SpawnTime < entries[j].SpawnTime
		}
		return entries[i].Note.Beat < entries[j].Note.Beat
	})

	return &Scheduler{
		chart:    chart,
		duration: duration,
		entries:  entries,
	}, nil
}

// SpawnTime is when n enters the playfield, clamped to the start of playback.
func SpawnTime(chart *game.Chart, n *game.Note) float64 {
	t := (n.Beat-game.TravelBeats())*chart.BeatDuration() - chart.Offset
	if t < 0 {
		return 0
	}
	return t
}

// Position is the z coordinate of n at transport time t. The chart offset
// shifts the hit time, so a positive offset brings every note closer.
func Position(chart *game.Chart, n *game.Note, t float64) float64 {
	beatsToJudgement := (chart.HitTime(n.Beat) - t) / chart.BeatDuration()
	return game.JudgementZ - beatsToJudgement*game.TravelSpeed
}

// Visible reports whether z lies between the appear and despawn planes.
func Visible(z float64) bool {
	return z >= game.AppearZ && z <= game.DespawnZ
}

func (s *Scheduler) Chart() *game.Chart {
	return s.chart
}

func (s *Scheduler) Duration() float64 {
	return s.duration
}

// Schedule returns a copy of the spawn schedule.
func (s *Scheduler) Schedule() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Advance spawns every note whose spawn time is at or before t. Notes are
// returned at most once.
func (s *Scheduler) Advance(t float64) []*game.ActiveNote {
	var spawned []*game.ActiveNote
	for s.next < len(s.entries) && s.entries[s.next].SpawnTime <= t {
		spawned = append(spawned, s.chart.Activate(s.entries[s.next].Note))
		s.next++
	}
	return spawned
}

// Pending is the number of notes not yet spawned.
func (s *Scheduler) Pending() int {
	return len(s.entries) - s.next
}

// Finished holds once the track has played out and no note is outstanding,
// whether active or still waiting to spawn.
func (s *Scheduler) Finished(t float64, active int) bool {
	return t >= s.duration && active == 0 && s.Pending() == 0
}

// Progress is the played percentage of the track.
func (s *Scheduler) Progress(t float64) float64 {
	if s.duration <= 0 {
		return 0
	}
	p := t / s.duration * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Reset rewinds the spawn cursor, for restarting a track.
func (s *Scheduler) Reset() {
	s.next = 0
}
