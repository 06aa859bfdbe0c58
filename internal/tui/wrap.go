// Package tui provides the Bubble Tea practice interface.
package tui

import "github.com/mattn/go-runewidth"

// fitLine truncates a line to the given display width, appending an
// ellipsis when anything was cut.
func fitLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 1 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "…")
}
