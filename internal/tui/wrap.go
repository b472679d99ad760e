package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledCell struct {
	s       string
	width   int
	isSpace bool
}

var spaceCell = styledCell{s: " ", width: 1, isSpace: true}

func newCell(style lipgloss.Style, text string) styledCell {
	return styledCell{s: style.Render(text), width: runewidth.StringWidth(text)}
}

// buildOverCells lays out every over as a label followed by its delivery
// chips. Overs are separated by spaces so wrapping never splits a chip.
func buildOverCells(overs [][]string, current int) []styledCell {
	out := make([]styledCell, 0, len(overs)*8)
	for i, over := range overs {
		if i > 0 {
			out = append(out, spaceCell, spaceCell)
		}
		labelStyle := overLabelStyle
		if i == current {
			labelStyle = currentOverStyle
		}
		out = append(out, newCell(labelStyle, "Ov"+strconv.Itoa(i+1)))
		if len(over) == 0 {
			out = append(out, spaceCell, newCell(pendingStyle, "·"))
			continue
		}
		for _, label := range over {
			out = append(out, spaceCell, newCell(chipStyle(label), label))
		}
	}
	return out
}

func chipStyle(label string) lipgloss.Style {
	switch label {
	case "W":
		return wicketStyle
	case "6":
		return sixStyle
	case "4":
		return fourStyle
	case "0":
		return dotStyle
	case "Wd", "Nb":
		return extraStyle
	default:
		return runStyle
	}
}

func renderCells(cells []styledCell) string {
	var b strings.Builder
	for _, item := range cells {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapCells(cells []styledCell, width int) string {
	if width <= 0 {
		return renderCells(cells)
	}
	var out strings.Builder
	line := make([]styledCell, 0, len(cells))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(cells); {
		item := cells[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(strings.TrimRight(renderCells(line[:lastSpaceIdx]), " "))
				out.WriteRune('\n')
				line = trimLeadingSpaces(append([]styledCell{}, line[lastSpaceIdx+1:]...))
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderCells(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		if item.isSpace && len(line) == 0 {
			i++
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderCells(line))
	return out.String()
}

func trimLeadingSpaces(line []styledCell) []styledCell {
	for len(line) > 0 && line[0].isSpace {
		line = line[1:]
	}
	return line
}

func lineWidthOf(line []styledCell) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledCell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
