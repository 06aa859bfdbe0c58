// Package rating replays round history into a skill rating series.
//
// The replay is pure and deterministic: the same ordered history always
// produces the same series, regardless of machine, locale, or wall
// clock. Nothing is persisted; the series is recomputed from the saved
// rounds every time.
package rating

import (
	"math"

	"github.com/verte-zerg/clef/internal/model"
)

// Replay constants. Every player starts from the same baseline and all
// rounds share one K factor.
const (
	Base = 1000.0
	K    = 32.0
)

// Opponent strength per difficulty tier: an easy round is a weak
// opponent, so losses there cost more.
var opponent = map[model.Difficulty]float64{
	model.Easy:   800.0,
	model.Medium: 1000.0,
	model.Hard:   1200.0,
}

// Replay computes the rating series for a full history, ordered by end
// time ascending. An empty history yields an empty series.
func Replay(rounds []model.RoundRecord) []model.RatingPoint {
	return ReplayFrom(Base, rounds)
}

// ReplayFrom continues a replay from a prior rating over only the new
// rounds. Replaying h1 followed by ReplayFrom(final(h1), h2) is
// equivalent to Replay(h1 ++ h2).
//
// Rounds without a question target carry no win fraction and are
// skipped, the same way the original history treats them.
func ReplayFrom(start float64, rounds []model.RoundRecord) []model.RatingPoint {
	r := start
	var points []model.RatingPoint
	for _, round := range rounds {
		if round.Questions <= 0 {
			continue
		}
		opp, ok := opponent[round.Difficulty]
		if !ok {
			opp = opponent[model.Medium]
		}
		out := outcome(round.Score, round.Questions)
		expect := expectation(r, opp)
		prev := r
		r += K * (out - expect)
		points = append(points, model.RatingPoint{
			At:     round.EndedAt,
			Rating: r,
			Delta:  r - prev,
		})
	}
	return points
}

// Final returns the rating after the last point, or the baseline for an
// empty series.
func Final(points []model.RatingPoint) float64 {
	if len(points) == 0 {
		return Base
	}
	return points[len(points)-1].Rating
}

// outcome normalizes a round's net score into a win fraction. With Q
// questions the net score S implies (Q+S)/2 correct answers; the
// fraction saturates at 0 and 1 because repeated wrong guesses can push
// S below -Q.
func outcome(score, questions int) float64 {
	frac := (float64(questions) + float64(score)) / (2 * float64(questions))
	return math.Min(1, math.Max(0, frac))
}

// expectation is the logistic win expectation of the current rating
// against an opponent strength.
func expectation(rating, opp float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opp-rating)/400.0))
}
