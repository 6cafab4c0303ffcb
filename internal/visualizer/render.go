package visualizer

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Renderer draws one set of bars. Clear removes whatever was drawn.
type Renderer interface {
	Render(bars []Bar)
	Clear()
}

type Nop struct{}

func (Nop) Render([]Bar) {}
func (Nop) Clear()       {}

var (
	barColor = [3]float64{156, 39, 176}
	bgColor  = [3]float64{30, 30, 30}
)

// eighths are partial block glyphs for the top cell of a bar.
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Terminal redraws the spectrum in place on a terminal.
type Terminal struct {
	out    *termenv.Output
	width  int
	height int
	drawn  bool
}

func NewTerminal(w io.Writer, width, height int) *Terminal {
	return &Terminal{
		out:    termenv.NewOutput(w),
		width:  width,
		height: height,
	}
}

func (t *Terminal) Render(bars []Bar) {
	if t.drawn {
		t.out.CursorPrevLine(t.height)
	} else {
		t.out.HideCursor()
	}
	fmt.Fprint(t.out, t.frame(bars))
	t.drawn = true
}

func (t *Terminal) Clear() {
	if !t.drawn {
		return
	}
	t.out.CursorPrevLine(t.height)
	for i := 0; i < t.height; i++ {
		t.out.ClearLine()
		fmt.Fprintln(t.out)
	}
	t.out.CursorPrevLine(t.height)
	t.out.ShowCursor()
	t.drawn = false
}

func (t *Terminal) frame(bars []Bar) string {
	cells := t.height * 8
	var b strings.Builder
	for row := 0; row < t.height; row++ {
		// rows count down from the top; floor is the eighth-cell index at
		// the bottom of this row.
		floor := (t.height - 1 - row) * 8
		col := 0
		for _, bar := range bars {
			if bar.X > col {
				b.WriteString(strings.Repeat(" ", bar.X-col))
				col = bar.X
			}
			filled := int(bar.Level*float64(cells) + 0.5)
			glyph := ' '
			switch {
			case filled >= floor+8:
				glyph = eighths[8]
			case filled > floor:
				glyph = eighths[filled-floor]
			}
			cell := strings.Repeat(string(glyph), bar.Width)
			if glyph != ' ' {
				cell = barStyle(bar).Render(cell)
			}
			b.WriteString(cell)
			col += bar.Width
		}
		if col < t.width {
			b.WriteString(strings.Repeat(" ", t.width-col))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// barStyle blends the bar colour over the background by opacity.
func barStyle(bar Bar) lipgloss.Style {
	var rgb [3]int
	for i := range rgb {
		rgb[i] = int(bgColor[i] + (barColor[i]-bgColor[i])*bar.Opacity)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]))).
		Bold(bar.Intensity == 255)
}
