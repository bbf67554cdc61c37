package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/handbeat/internal/theme"
	"golang.org/x/term"
)

const (
	DefaultFramePeriod = 16 * time.Millisecond
	DefaultSpacing     = 3
)

type DefaultRenderer struct {
	Out         io.Writer
	Theme       theme.Theme
	FramePeriod time.Duration
	Spacing     int // Columns per world unit

	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
	rows, cols   int

	// Cells drawn last frame that must be blanked before the next
	drawn   []cell
	lastSeq uint64
}

type cell struct {
	row, col int
}

type decoration struct {
	X, Y    int
	Content string
	Frames  int // remaining frames until removed
}

func (r *DefaultRenderer) defaults() {
	if nil == r.Out {
		r.Out = os.Stdout
	}
	if nil == r.Theme {
		r.Theme = &theme.DefaultTheme{}
	}
	if r.FramePeriod <= 0 {
		r.FramePeriod = DefaultFramePeriod
	}
	if r.Spacing <= 0 {
		r.Spacing = DefaultSpacing
	}
}

func (r *DefaultRenderer) Init() error {
	r.defaults()
	fd := int(os.Stdout.Fd())
	columns, rows, err := term.GetSize(fd)
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}
	r.Resize(columns, rows)

	state, err := term.MakeRaw(fd)
	if nil != err {
		return fmt.Errorf("unable to enter raw mode: %w", err)
	}
	r.restoreState = state

	fmt.Fprintf(r.Out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	r.defaults()
	fmt.Fprintf(r.Out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil == r.restoreState {
		return nil
	}
	return term.Restore(int(os.Stdout.Fd()), r.restoreState)
}

// Resize sets the drawable area.
func (r *DefaultRenderer) Resize(columns, rows int) {
	r.cols, r.rows = columns, rows
}

func (r *DefaultRenderer) AddDecoration(col, row int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, strings.Repeat(" ", visibleWidth(d.Content)))
			continue
		}
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

func (r *DefaultRenderer) RenderLoop(
	delay time.Duration,
	render func(startTime time.Time, duration time.Duration) bool,
) {
	r.defaults()
	cont := true
	startTime := time.Now().Add(delay)
	for cont {
		now := time.Now()
		duration := now.Sub(startTime)
		deadline := now.Add(r.FramePeriod)

		cont = render(startTime, duration)

		r.tickDecorations()
		r.flush()

		time.Sleep(time.Until(deadline))
	}
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) flush() {
	r.defaults()
	io.WriteString(r.Out, r.buffer.String())
	r.buffer.Reset()
}

// visibleWidth counts runes outside of escape sequences.
func visibleWidth(s string) int {
	n := 0
	escaped := false
	for _, c := range s {
		switch {
		case c == '\033':
			escaped = true
		case escaped:
			if c == 'm' || c == 'H' {
				escaped = false
			}
		default:
			n++
		}
	}
	return n
}
