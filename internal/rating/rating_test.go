package rating

import (
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/clef/internal/model"
)

func roundAt(minute int, diff model.Difficulty, score, questions int) model.RoundRecord {
	return model.RoundRecord{
		RoundSummary: model.RoundSummary{
			EndedAt:    time.Unix(0, 0).Add(time.Duration(minute) * time.Minute),
			Difficulty: diff,
			Score:      score,
			Questions:  questions,
			Answered:   questions,
		},
	}
}

func TestReplayEmpty(t *testing.T) {
	if points := Replay(nil); len(points) != 0 {
		t.Fatalf("Replay(nil) = %v, want empty", points)
	}
}

func TestReplayDeterministic(t *testing.T) {
	history := []model.RoundRecord{
		roundAt(0, model.Easy, 10, 10),
		roundAt(1, model.Medium, -2, 10),
		roundAt(2, model.Hard, 4, 10),
	}
	a := Replay(history)
	b := Replay(history)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestReplaySplitEquivalence(t *testing.T) {
	history := []model.RoundRecord{
		roundAt(0, model.Easy, 8, 10),
		roundAt(1, model.Medium, 0, 10),
		roundAt(2, model.Hard, -4, 10),
		roundAt(3, model.Hard, 10, 10),
		roundAt(4, model.Easy, 2, 10),
	}
	full := Replay(history)
	head := Replay(history[:2])
	tail := ReplayFrom(Final(head), history[2:])
	combined := append(append([]model.RatingPoint{}, head...), tail...)
	if len(combined) != len(full) {
		t.Fatalf("lengths differ: %d vs %d", len(combined), len(full))
	}
	for i := range full {
		if math.Abs(full[i].Rating-combined[i].Rating) > 1e-9 {
			t.Fatalf("point %d: %.12f vs %.12f", i, full[i].Rating, combined[i].Rating)
		}
	}
}

func TestReplayDirection(t *testing.T) {
	perfect := Replay([]model.RoundRecord{roundAt(0, model.Medium, 10, 10)})
	if len(perfect) != 1 || perfect[0].Rating <= Base {
		t.Fatalf("perfect round should raise the rating: %+v", perfect)
	}
	awful := Replay([]model.RoundRecord{roundAt(0, model.Medium, -10, 10)})
	if len(awful) != 1 || awful[0].Rating >= Base {
		t.Fatalf("all-wrong round should lower the rating: %+v", awful)
	}
	// Against an equal opponent a perfect 10/10 is worth K/2.
	if got := perfect[0].Rating - Base; math.Abs(got-K/2) > 1e-9 {
		t.Fatalf("delta = %.6f, want %.6f", got, K/2)
	}
}

func TestReplayOutcomeSaturates(t *testing.T) {
	// Score far below -Q clamps to a full loss rather than overshooting.
	deep := Replay([]model.RoundRecord{roundAt(0, model.Medium, -50, 10)})
	floor := Replay([]model.RoundRecord{roundAt(0, model.Medium, -10, 10)})
	if math.Abs(deep[0].Rating-floor[0].Rating) > 1e-9 {
		t.Fatalf("outcome should saturate: %.6f vs %.6f", deep[0].Rating, floor[0].Rating)
	}
}

func TestReplaySkipsUnlimitedRounds(t *testing.T) {
	history := []model.RoundRecord{
		roundAt(0, model.Medium, 5, 0), // unlimited round, no target
		roundAt(1, model.Medium, 5, 10),
	}
	points := Replay(history)
	if len(points) != 1 {
		t.Fatalf("points = %d, want 1", len(points))
	}
	if !points[0].At.Equal(history[1].EndedAt) {
		t.Fatalf("point timestamp = %v, want %v", points[0].At, history[1].EndedAt)
	}
}

func TestHarderOpponentPaysMore(t *testing.T) {
	hard := Replay([]model.RoundRecord{roundAt(0, model.Hard, 10, 10)})
	easy := Replay([]model.RoundRecord{roundAt(0, model.Easy, 10, 10)})
	if hard[0].Delta <= easy[0].Delta {
		t.Fatalf("hard win delta %.3f should exceed easy win delta %.3f", hard[0].Delta, easy[0].Delta)
	}
}
