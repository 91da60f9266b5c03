package main

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// overlayCenter draws a modal centered over the base view, treating both as
// line grids inside a width x height region. This UI has exactly one overlay
// surface, so centering is computed here rather than by the caller. Widths
// are measured visually; wide CJK cells stay aligned.
func overlayCenter(base, modal string, width, height int) string {
	baseLines := splitLines(base)
	modalLines := splitLines(modal)
	modalWidth := maxLineWidth(modalLines)

	x := (width - modalWidth) / 2
	if x < 0 {
		x = 0
	}
	y := (height - len(modalLines)) / 2
	if y < 0 {
		y = 0
	}

	for i, line := range modalLines {
		row := y + i
		if row >= len(baseLines) || row >= height {
			break
		}
		target := padRight(baseLines[row], width)
		left := ansi.Truncate(target, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		right := ansi.TruncateLeft(target, x+modalWidth, "")
		if gap := width - x - modalWidth - ansi.StringWidth(right); gap > 0 {
			right = strings.Repeat(" ", gap) + right
		}
		baseLines[row] = left + padRight(line, modalWidth) + right
	}
	return strings.Join(baseLines, "\n")
}

// ---------------------------------------------------------------------------
// String utilities
// ---------------------------------------------------------------------------

// splitLines splits a string on newlines, returning at least one element.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// maxLineWidth returns the visual width of the widest line.
func maxLineWidth(lines []string) int {
	m := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > m {
			m = w
		}
	}
	return m
}

// padRight pads s with spaces so its visual width equals width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncate shortens s to the given visual width, appending an ellipsis if cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
