// Package staff renders a pitch on an ASCII treble staff.
package staff

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/clef/internal/pitch"
)

const (
	// Diatonic steps (octave*7 + letter index, C=0) of the treble
	// staff's bottom and top lines, E4 and F5.
	bottomLineStep = 30
	topLineStep    = 38

	staffWidth = 25
	noteCol    = 14
	ledgerHalf = 2
)

var letterStep = map[byte]int{
	'C': 0, 'D': 1, 'E': 2, 'F': 3, 'G': 4, 'A': 5, 'B': 6,
}

var (
	lineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// Step returns the diatonic staff step of a pitch; accidentals share
// the step of their letter.
func Step(p pitch.Pitch) int {
	return p.Octave*7 + letterStep[p.Letter]
}

// Render draws the staff with the note placed on its step. Ledger lines
// are added for notes above or below the five staff lines.
func Render(p pitch.Pitch) string {
	noteStep := Step(p)
	top := topLineStep
	if noteStep+1 > top {
		top = noteStep + 1
	}
	bottom := bottomLineStep
	if noteStep-1 < bottom {
		bottom = noteStep - 1
	}

	var rows []string
	for s := top; s >= bottom; s-- {
		rows = append(rows, renderRow(s, noteStep, p.Accidental))
	}
	return strings.Join(rows, "\n")
}

func renderRow(step, noteStep int, acc pitch.Accidental) string {
	linParity := (step-bottomLineStep)%2 == 0
	onStaff := step >= bottomLineStep && step <= topLineStep
	// Ledger positions: line-parity steps between the staff and the
	// note, inclusive of the note's own step.
	needsLedger := linParity && !onStaff &&
		((step > topLineStep && step <= noteStep) ||
			(step < bottomLineStep && step >= noteStep))

	row := []rune(strings.Repeat(" ", staffWidth))
	if onStaff && linParity {
		row = []rune(strings.Repeat("─", staffWidth))
	} else if needsLedger {
		for i := noteCol - ledgerHalf; i <= noteCol+ledgerHalf; i++ {
			row[i] = '─'
		}
	}

	if step != noteStep {
		return lineStyle.Render(string(row))
	}

	glyph := "●"
	switch acc {
	case pitch.Sharp:
		glyph = "♯●"
	case pitch.Flat:
		glyph = "♭●"
	}
	left := string(row[:noteCol-len([]rune(glyph))+1])
	right := string(row[noteCol+1:])
	return lineStyle.Render(left) + noteStyle.Render(glyph) + lineStyle.Render(right)
}
