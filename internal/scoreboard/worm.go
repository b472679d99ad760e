package scoreboard

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/gullyscore/internal/engine"
	"github.com/verte-zerg/gullyscore/internal/model"
)

// Series is a named run progression, one value per completed over.
type Series struct {
	Name   string
	Values []float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultWormHeight   = 8
	minWormWidth        = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
}

var colorPalette = []string{"\x1b[36m", "\x1b[33m"}

// WormSeries returns the cumulative runs at the end of every over for each
// innings, starting from zero.
func WormSeries(m model.Match) []Series {
	out := make([]Series, 0, len(m.Innings))
	for _, inn := range m.Innings {
		values := []float64{0}
		total := 0
		for _, runs := range engine.RunsPerOver(inn) {
			total += runs
			values = append(values, float64(total))
		}
		// A trailing empty slot adds nothing to the worm.
		if n := len(inn.Overs); n > 0 && len(inn.Overs[n-1]) == 0 {
			values = values[:len(values)-1]
		}
		out = append(out, Series{Name: inn.BattingTeam, Values: values})
	}
	return out
}

// PlotWorm renders the cumulative runs of both innings on a shared scale with
// braille dots. The x axis spans the full overs limit so both innings line up.
func PlotWorm(w io.Writer, m model.Match, width, height int, forceColor bool) error {
	series := WormSeries(m)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultWormHeight
	}
	if width <= 0 {
		width = PlotWidthFor(TerminalWidth())
	}
	width = max(width, minWormWidth)

	top := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			top = math.Max(top, v)
		}
	}
	if top == 0 {
		top = 1
	}
	labelWidth := len(strconv.Itoa(int(top)))

	overs := max(1, m.OversLimit)
	dotsX := width * 2
	dotsY := height * 4
	cells := make([][][]uint8, len(series))
	for si, s := range series {
		cells[si] = makeCells(height, width)
		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for over, v := range s.Values {
			px := int(math.Round(float64(over) / float64(overs) * float64(dotsX-1)))
			py := int(math.Round((1 - v/top) * float64(dotsY-1)))
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(x, y int) {
					if style.shouldPlot(x) {
						setBrailleDot(cells[si], x, y)
					}
				})
			} else {
				setBrailleDot(cells[si], px, py)
			}
			prevX, prevY = px, py
		}
	}

	useColor := shouldUseColor(w, forceColor)
	if _, err := fmt.Fprintln(w, "Worm (runs by over)"); err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = strconv.Itoa(int(top))
		case height - 1:
			label = "0"
		}
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", labelWidth, label, axisSeparator)
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(cells, x, y)
			ch := rune(0x2800 + int(mask))
			if useColor && colorIdx >= 0 {
				row.WriteString(colorPalette[colorIdx%len(colorPalette)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, renderLegend(series, useColor))
	return err
}

// PlotWidthFor returns the plot width that fits next to the axis labels.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minWormWidth
	}
	return max(minWormWidth, totalWidth-len("999")-len([]rune(axisSeparator)))
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		last := 0.0
		if len(s.Values) > 0 {
			last = s.Values[len(s.Values)-1]
		}
		label := fmt.Sprintf("⠁ %s %.0f (%s)", s.Name, last, lineStyles[i%len(lineStyles)].name)
		if useColor {
			label = colorPalette[i%len(colorPalette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(seriesCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range seriesCells {
		if y >= len(cells) || x >= len(cells[y]) || cells[y][x] == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cells[y][x]
	}
	return mask, colorIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	return x%ls.period < ls.on
}

// drawLine walks a Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// braille dot bits, indexed by [column][row] within a 2x4 cell.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cy, cx := y/4, x/2
	if cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= brailleBits[x%2][y%4]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
