package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.lost.host/meutraa/handbeat/internal/game"
	"github.com/rs/zerolog"
)

type DefaultParser struct {
	Log zerolog.Logger
}

// Chart reports whether path looks like a chart this parser reads.
func Chart(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".sm":
		return true
	}
	return false
}

func (p *DefaultParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read chart: %w", err)
	}

	var charts []*game.Chart
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		var chart game.Chart
		if err := json.Unmarshal(data, &chart); nil != err {
			return nil, fmt.Errorf("%w: %v", game.ErrInvalidChart, err)
		}
		charts = []*game.Chart{&chart}
	case ".sm":
		charts, err = p.parseSM(string(data))
		if nil != err {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown chart format %v", game.ErrInvalidChart, filepath.Ext(file))
	}

	for _, c := range charts {
		if err := c.Validate(); nil != err {
			return nil, fmt.Errorf("%v (%v): %w", file, c.Difficulty, err)
		}
	}
	return charts, nil
}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine (or other negative note)
// K – Automatic keysound
// L – Lift note
// F – Fake note

func (p *DefaultParser) parseSM(str string) ([]*game.Chart, error) {
	str = strings.ReplaceAll(str, "\r", "")
	sections := strings.Split(str, "#NOTES:")
	meta := sections[0]

	base := game.Chart{}
	bpms := 0
	for _, mdl := range strings.Split(meta, "#") {
		mdl = strings.TrimSpace(mdl)
		mdl = strings.TrimSuffix(mdl, ";")
		key, value, ok := strings.Cut(mdl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "TITLE":
			base.Title = value
		case "ARTIST":
			base.Artist = value
		case "MUSIC":
			base.AudioSrc = value
		case "OFFSET":
			offs, err := strconv.ParseFloat(value, 64)
			if nil != err {
				return nil, fmt.Errorf("%w: offset: %v", game.ErrInvalidChart, err)
			}
			base.Offset = offs
		case "BPMS":
			value = strings.ReplaceAll(value, "\n", "")
			for _, bpm := range strings.Split(value, ",") {
				as := strings.Split(bpm, "=")
				if len(as) != 2 {
					continue
				}
				bbbs, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
				if nil != err {
					return nil, fmt.Errorf("%w: bpm: %v", game.ErrInvalidChart, err)
				}
				if bpms == 0 {
					base.BPM = bbbs
				}
				bpms++
			}
		}
	}
	if bpms > 1 {
		p.Log.Warn().Str("chart", base.Title).Int("bpms", bpms).Msg("only the first bpm is used")
	}

	charts := []*game.Chart{}
	for _, section := range sections[1:] {
		fields := strings.SplitN(section, ":", 6)
		if len(fields) != 6 {
			continue
		}
		if strings.TrimSpace(fields[0]) != "dance-single" {
			continue
		}
		chart := base
		chart.Difficulty = strings.TrimSpace(fields[2])
		body := fields[5]
		if end := strings.Index(body, ";"); end >= 0 {
			body = body[:end]
		}
		chart.Notes = p.parseMeasures(body)
		charts = append(charts, &chart)
	}
	return charts, nil
}

func (p *DefaultParser) parseMeasures(body string) []*game.Note {
	notes := []*game.Note{}
	heads := [game.LaneCount]*game.Note{}

	for m, block := range strings.Split(body, ",") {
		lines := []string{}
		for _, l := range strings.Split(block, "\n") {
			if i := strings.Index(l, "//"); i >= 0 {
				l = l[:i]
			}
			l = strings.TrimSpace(l)
			if len(l) == game.LaneCount {
				lines = append(lines, l)
			}
		}

		// Beat count is 4 per block
		for i, line := range lines {
			beat := float64(m*4) + 4*float64(i)/float64(len(lines))
			for lane, c := range []byte(line) {
				switch c {
				case '1':
					notes = append(notes, newNote(game.Tap, lane, beat))
				case '2', '4':
					n := newNote(game.Hold, lane, beat)
					heads[lane] = n
					notes = append(notes, n)
				case '3':
					// This is a release note of a previous head
					if head := heads[lane]; nil != head {
						head.Duration = beat - head.Beat
						heads[lane] = nil
					}
				}
			}
		}
	}

	// A head without a tail is played as a tap
	for _, n := range notes {
		if n.Type == game.Hold && n.Duration <= 0 {
			n.Type = game.Tap
		}
	}
	return notes
}

func newNote(t game.NoteType, lane int, beat float64) *game.Note {
	return &game.Note{
		ID:   fmt.Sprintf("n%v-%v", lane, beat),
		Type: t,
		Lane: lane,
		Beat: beat,
	}
}
