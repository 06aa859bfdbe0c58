package stats

import (
	"strings"
	"testing"
)

func TestFormatTable(t *testing.T) {
	headers := []string{"Ended", "Score"}
	rows := [][]string{
		{"2026-01-02 10:00", "3"},
		{"2026-01-02 11:00", "-12"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Ended") {
		t.Fatalf("header line wrong: %q", lines[0])
	}
	// Right-aligned column lines up on the last character.
	if !strings.HasSuffix(lines[1], "  3") || !strings.HasSuffix(lines[2], "-12") {
		t.Fatalf("right alignment wrong:\n%s", strings.Join(lines, "\n"))
	}
}
