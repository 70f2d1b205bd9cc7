package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// wideTail fills the second column of a double-width rune.
const wideTail rune = 0

// columns measures runes as a terminal lays them out, independent of the
// locale in the environment.
var columns = &runewidth.Condition{StrictEmojiNeutral: true}

// cellClass selects the style of a canvas cell.
type cellClass uint8

const (
	classBlank cellClass = iota
	classLine
	classMarker
	classPerson
	classUnknown
	classCollapsed
	classSelected
	classMiniFrame
	classMiniPerson
	classMiniView
	classPing
)

var cellStyles = map[cellClass]lipgloss.Style{
	classLine:       lipgloss.NewStyle().Foreground(colorBronze),
	classMarker:     lipgloss.NewStyle().Foreground(colorCrimson),
	classPerson:     lipgloss.NewStyle().Foreground(colorWhite),
	classUnknown:    lipgloss.NewStyle().Foreground(colorDim),
	classCollapsed:  lipgloss.NewStyle().Foreground(colorYellow),
	classSelected:   lipgloss.NewStyle().Foreground(colorGold).Bold(true),
	classMiniFrame:  lipgloss.NewStyle().Foreground(colorDim),
	classMiniPerson: lipgloss.NewStyle().Foreground(colorGray),
	classMiniView:   lipgloss.NewStyle().Foreground(colorCyan),
	classPing:       lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
}

// canvas is a fixed grid of styled terminal cells. Writes outside the grid
// are dropped. A double-width rune takes its cell and the next one, which
// holds wideTail.
type canvas struct {
	w, h  int
	cells [][]rune
	class [][]cellClass
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: max(w, 0), h: max(h, 0)}
	c.cells = make([][]rune, c.h)
	c.class = make([][]cellClass, c.h)
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", c.w))
		c.class[y] = make([]cellClass, c.w)
	}
	return c
}

func (c *canvas) set(x, y int, r rune, cl cellClass) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	w := columns.RuneWidth(r)
	if w == 0 {
		return
	}
	if w == 2 && x+1 >= c.w {
		r, w = ' ', 1
	}
	c.release(x, y)
	c.cells[y][x] = r
	c.class[y][x] = cl
	if w == 2 {
		c.release(x+1, y)
		c.cells[y][x+1] = wideTail
		c.class[y][x+1] = cl
	}
}

// release blanks the other half of a double-width rune overlapping (x, y).
func (c *canvas) release(x, y int) {
	row := c.cells[y]
	if row[x] == wideTail && x > 0 {
		row[x-1] = ' '
	}
	if x+1 < c.w && row[x+1] == wideTail {
		row[x+1] = ' '
	}
}

func (c *canvas) get(x, y int) rune {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return ' '
	}
	return c.cells[y][x]
}

// text writes s from (x, y) using at most n columns. A double-width rune
// that would cross the limit is dropped.
func (c *canvas) text(x, y int, s string, n int, cl cellClass) {
	col := 0
	for _, r := range s {
		w := columns.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > n {
			return
		}
		c.set(x+col, y, r, cl)
		col += w
	}
}

// textWidth is the number of columns s takes on the canvas.
func textWidth(s string) int {
	return columns.StringWidth(s)
}

// hline draws a horizontal line, joining crossings with vertical lines.
func (c *canvas) hline(x0, x1, y int, cl cellClass) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		r := '─'
		if c.get(x, y) == '│' {
			r = '┼'
		}
		c.set(x, y, r, cl)
	}
}

// vline draws a vertical line, joining crossings with horizontal lines.
func (c *canvas) vline(x, y0, y1 int, cl cellClass) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		r := '│'
		if c.get(x, y) == '─' {
			r = '┼'
		}
		c.set(x, y, r, cl)
	}
}

// box draws a rectangle outline with corners at (x0, y0) and (x1, y1).
func (c *canvas) box(x0, y0, x1, y1 int, cl cellClass) {
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─', cl)
		c.set(x, y1, '─', cl)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│', cl)
		c.set(x1, y, '│', cl)
	}
	c.set(x0, y0, '┌', cl)
	c.set(x1, y0, '┐', cl)
	c.set(x0, y1, '└', cl)
	c.set(x1, y1, '┘', cl)
}

// fill blanks a rectangle.
func (c *canvas) fill(x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.set(x, y, ' ', classBlank)
		}
	}
}

// String renders the grid, styling runs of equal class together.
func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		start := 0
		for x := 1; x <= c.w; x++ {
			if x < c.w && c.class[y][x] == c.class[y][start] {
				continue
			}
			run := rowString(c.cells[y][start:x])
			if st, ok := cellStyles[c.class[y][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = x
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// plain returns the grid without styling.
func (c *canvas) plain() string {
	lines := make([]string, c.h)
	for y := range c.cells {
		lines[y] = rowString(c.cells[y])
	}
	return strings.Join(lines, "\n")
}

func rowString(cells []rune) string {
	var b strings.Builder
	for _, r := range cells {
		if r != wideTail {
			b.WriteRune(r)
		}
	}
	return b.String()
}
