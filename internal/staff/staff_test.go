package staff

import (
	"strings"
	"testing"

	"github.com/verte-zerg/clef/internal/pitch"
)

func mustPitch(t *testing.T, s string) pitch.Pitch {
	t.Helper()
	p, err := pitch.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return p
}

func staffLineCount(out string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Count(line, "─") >= staffWidth {
			n++
		}
	}
	return n
}

func TestRenderInStaff(t *testing.T) {
	// A4 sits in a space, leaving all five staff lines intact.
	out := Render(mustPitch(t, "A4"))
	if staffLineCount(out) != 5 {
		t.Fatalf("expected 5 full staff lines:\n%s", out)
	}
	if !strings.Contains(out, "●") {
		t.Fatalf("missing note glyph:\n%s", out)
	}
}

func TestRenderBelowStaffLedger(t *testing.T) {
	// C4 sits one ledger line below the staff.
	out := Render(mustPitch(t, "C4"))
	if staffLineCount(out) != 5 {
		t.Fatalf("expected 5 full staff lines:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	noteLine := ""
	for _, line := range lines {
		if strings.Contains(line, "●") {
			noteLine = line
		}
	}
	if noteLine == "" {
		t.Fatalf("missing note glyph:\n%s", out)
	}
	if !strings.Contains(noteLine, "─") {
		t.Fatalf("C4 should sit on a ledger line:\n%s", out)
	}
}

func TestRenderAccidentalGlyph(t *testing.T) {
	if out := Render(mustPitch(t, "C#5")); !strings.Contains(out, "♯") {
		t.Fatalf("missing sharp glyph:\n%s", out)
	}
	if out := Render(mustPitch(t, "Bb3")); !strings.Contains(out, "♭") {
		t.Fatalf("missing flat glyph:\n%s", out)
	}
}

func TestStepOrdering(t *testing.T) {
	low := Step(mustPitch(t, "Ab3"))
	mid := Step(mustPitch(t, "C4"))
	high := Step(mustPitch(t, "C#6"))
	if !(low < mid && mid < high) {
		t.Fatalf("steps out of order: %d %d %d", low, mid, high)
	}
	// Enharmonic spellings sit on different staff steps.
	if Step(mustPitch(t, "C#4")) == Step(mustPitch(t, "Db4")) {
		t.Fatalf("C#4 and Db4 should occupy different steps")
	}
}
