package render

import (
	"fmt"
	"math"
	"strings"

	"git.lost.host/meutraa/handbeat/internal/game"
	"git.lost.host/meutraa/handbeat/internal/pose"
	"git.lost.host/meutraa/handbeat/internal/schedule"
	"git.lost.host/meutraa/handbeat/internal/score"
	"git.lost.host/meutraa/handbeat/internal/session"
)

const (
	topRow = 2

	// Rows below the hit bar, room for notes travelling to the despawn plane
	// and the hand markers
	barOffsetFromBottom = 5

	pulseFrames   = 30
	progressWidth = 20
)

func (r *DefaultRenderer) hitRow() int {
	return r.rows - barOffsetFromBottom
}

// Row maps a world Z onto a terminal row, the appear plane on topRow and the
// judgement line on the hit row.
func (r *DefaultRenderer) Row(z float64) int {
	hit := r.hitRow()
	f := (game.JudgementZ - z) / (game.JudgementZ - game.AppearZ)
	return hit - int(math.Round(f*float64(hit-topRow)))
}

// Column maps a world X onto a terminal column around the screen middle.
func (r *DefaultRenderer) Column(x float64) int {
	return r.cols/2 + int(math.Round(x*float64(r.Spacing)))
}

func (r *DefaultRenderer) sideCol() int {
	col := r.Column(game.LaneX[0]) - 32
	if col < 2 {
		col = 2
	}
	return col
}

func (r *DefaultRenderer) draw(row, col int, content string) {
	if row < 1 || row > r.rows || col < 1 || col > r.cols {
		return
	}
	r.Fill(row, col, content)
	r.drawn = append(r.drawn, cell{row: row, col: col})
}

// DrawField draws the lanes, every visible note and the hand pointers.
func (r *DefaultRenderer) DrawField(snap *session.Snapshot) {
	r.defaults()
	for _, c := range r.drawn {
		r.Fill(c.row, c.col, " ")
	}
	r.drawn = r.drawn[:0]

	hit := r.hitRow()
	for lane, x := range game.LaneX {
		r.Fill(hit, r.Column(x)-1, r.Theme.RenderHitField(lane))
	}

	for _, n := range snap.Notes {
		if !schedule.Visible(n.Z) {
			continue
		}
		col := r.Column(game.LaneX[n.Lane])
		row := r.Row(n.Z)
		if n.Type == game.Hold {
			tail := r.Row(math.Max(n.TailZ, game.AppearZ))
			for br := tail; br < row; br++ {
				if br >= topRow && br != hit {
					r.draw(br, col, r.Theme.RenderHoldBody(n.Lane))
				}
			}
		}
		r.draw(row, col, r.Theme.RenderNote(n.Lane, n.Type, n.Dir))
	}

	hands := snap.Hands
	if !hands.Left.IsEmpty() {
		r.draw(hit+2, r.Column(pose.GameX(hands.Left.Pointer())), r.Theme.RenderHand(pose.LeftHand))
	}
	if !hands.Right.IsEmpty() {
		r.draw(hit+2, r.Column(pose.GameX(hands.Right.Pointer())), r.Theme.RenderHand(pose.RightHand))
	}
}

// DrawHUD draws the score panel and pulses the latest judgement.
func (r *DefaultRenderer) DrawHUD(chart *game.Chart, snap *session.Snapshot) {
	r.defaults()
	col := r.sideCol()
	r.Fill(topRow, col, fmt.Sprintf("%v - %v", chart.Title, chart.Artist))
	r.Fill(topRow+2, col, fmt.Sprintf("    Score:  %7v", snap.Score))
	r.Fill(topRow+3, col, fmt.Sprintf("    Combo:  %7v", snap.Combo))
	r.Fill(topRow+4, col, fmt.Sprintf("Max Combo:  %7v", snap.MaxCombo))
	r.Fill(topRow+6, col, progressBar(snap.Progress))

	if nil != snap.Last && snap.Last.Seq != r.lastSeq {
		r.lastSeq = snap.Last.Seq
		r.pulse(col+5, topRow+8, r.Theme.RenderJudgement(snap.Last.Judgement))
	}
}

// pulse replaces any decoration at the same cell so an expiring one never
// blanks its successor.
func (r *DefaultRenderer) pulse(col, row int, content string) {
	nd := r.decorations[:0]
	for _, d := range r.decorations {
		if d.X != col || d.Y != row {
			nd = append(nd, d)
		}
	}
	r.decorations = nd
	r.AddDecoration(col, row, content, pulseFrames)
}

func progressBar(percent float64) string {
	filled := int(math.Round(percent / 100 * progressWidth))
	if filled > progressWidth {
		filled = progressWidth
	}
	if filled < 0 {
		filled = 0
	}
	return fmt.Sprintf("[%v%v] %3.0f%%",
		strings.Repeat("#", filled),
		strings.Repeat("-", progressWidth-filled),
		percent,
	)
}

// DrawResult clears the field and shows the final result, with the best
// previous play when there is one.
func (r *DefaultRenderer) DrawResult(chart *game.Chart, result game.GameResult, best *score.History) {
	r.defaults()
	r.drawn = r.drawn[:0]
	r.decorations = nil
	r.buffer.WriteString("\033[2J")

	col := r.cols/2 - 12
	if col < 1 {
		col = 1
	}
	row := r.rows/2 - 6
	if row < 1 {
		row = 1
	}

	r.Fill(row, col, fmt.Sprintf("%v - %v", chart.Title, chart.Artist))
	r.Fill(row+2, col, fmt.Sprintf("    Score:  %7v", result.Score))
	r.Fill(row+3, col, fmt.Sprintf("Max Combo:  %7v", result.MaxCombo))
	for i, j := range game.Judgements {
		r.Fill(row+5+i, col, fmt.Sprintf("  %v:  %7v", r.Theme.RenderJudgement(j), result.Judgements[j]))
	}

	line := row + 6 + len(game.Judgements)
	switch {
	case nil == best:
		r.Fill(line, col, "First play")
	case result.Score > best.Result.Score:
		r.Fill(line, col, fmt.Sprintf("New best, previous %v", best.Result.Score))
	default:
		r.Fill(line, col, fmt.Sprintf("Best:  %v (%v)", best.Result.Score, best.PlayedAt.Format("2006-01-02")))
	}
	r.Fill(line+2, col, "Press any key")
	r.flush()
}
