package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/clef/internal/model"
	"github.com/verte-zerg/clef/internal/pitch"
	"github.com/verte-zerg/clef/internal/rating"
	"github.com/verte-zerg/clef/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "clef.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	low, _ := pitch.Parse("C4")
	high, _ := pitch.Parse("C5")
	ctx := context.Background()
	for i, tier := range []model.Difficulty{model.Easy, model.Medium, model.Hard} {
		start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Minute)
		summary := model.RoundSummary{
			StartedAt:  start,
			EndedAt:    start.Add(30 * time.Second),
			Difficulty: tier,
			Questions:  10,
			Answered:   10,
			Score:      6,
			Low:        low,
			High:       high,
		}
		if _, err := st.InsertRound(ctx, summary); err != nil {
			t.Fatalf("insert round: %v", err)
		}
	}
	return st
}

func TestBuildReport(t *testing.T) {
	st := seedStore(t)
	report, err := BuildReport(context.Background(), st, model.StatsConfig{Last: 2, CurveWindow: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(report.Rounds))
	}
	if len(report.Points) != 2 {
		t.Fatalf("expected 2 rating points, got %d", len(report.Points))
	}
	// The current rating reflects the full history, not the window.
	if report.Current == rating.Base {
		t.Fatalf("current rating should have moved off the baseline")
	}
	for _, r := range report.Rounds {
		if _, ok := report.PointByID[r.ID]; !ok {
			t.Fatalf("missing rating point for round %d", r.ID)
		}
	}
}

func TestBuildReportFilteredRatingMatchesFullReplay(t *testing.T) {
	st := seedStore(t)
	ctx := context.Background()
	full, err := BuildReport(ctx, st, model.StatsConfig{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	filtered, err := BuildReport(ctx, st, model.StatsConfig{Difficulty: "hard"})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(filtered.Rounds) != 1 {
		t.Fatalf("expected 1 hard round, got %d", len(filtered.Rounds))
	}
	// The hard round's rating point is identical under any filter.
	id := filtered.Rounds[0].ID
	if full.PointByID[id] != filtered.PointByID[id] {
		t.Fatalf("rating point changed under filter: %+v vs %+v", full.PointByID[id], filtered.PointByID[id])
	}
	if filtered.Current != full.Current {
		t.Fatalf("current rating changed under filter: %v vs %v", filtered.Current, full.Current)
	}
}

func TestRenderSummaryAndTable(t *testing.T) {
	st := seedStore(t)
	report, err := BuildReport(context.Background(), st, model.StatsConfig{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, report); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Rounds: 3", "Clef score:", "Avg easy:", "Avg hard:", "Trend:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	// The trend sparkline covers every reported round.
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "Trend: "); ok && len([]rune(rest)) != 3 {
			t.Fatalf("trend length = %d, want 3: %q", len([]rune(rest)), rest)
		}
	}
	buf.Reset()
	if err := RenderRoundsTable(&buf, report); err != nil {
		t.Fatalf("render table: %v", err)
	}
	if !strings.Contains(buf.String(), "Δ Rating") {
		t.Fatalf("table missing delta column:\n%s", buf.String())
	}
}

func TestRenderReport(t *testing.T) {
	st := seedStore(t)
	report, err := BuildReport(context.Background(), st, model.StatsConfig{CurveWindow: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 2, 60); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Trend:", "Clef Score", "Legend:", "Rounds", "Δ Rating"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}
