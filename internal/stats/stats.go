// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/clef/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Aggregates summarizes a round history for display.
type Aggregates struct {
	Rounds        int
	TotalScore    int
	AvgScore      float64
	AvgByTier     map[model.Difficulty]float64
	CountByTier   map[model.Difficulty]int
	CurrentRating float64
	BestRating    float64
}

// Aggregate computes count and score averages per difficulty tier plus
// the current and best rating along the series.
func Aggregate(rounds []model.RoundRecord, points []model.RatingPoint, current float64) Aggregates {
	agg := Aggregates{
		AvgByTier:     map[model.Difficulty]float64{},
		CountByTier:   map[model.Difficulty]int{},
		CurrentRating: current,
		BestRating:    current,
	}
	sums := map[model.Difficulty]int{}
	for _, r := range rounds {
		agg.Rounds++
		agg.TotalScore += r.Score
		sums[r.Difficulty] += r.Score
		agg.CountByTier[r.Difficulty]++
	}
	if agg.Rounds > 0 {
		agg.AvgScore = float64(agg.TotalScore) / float64(agg.Rounds)
	}
	for tier, n := range agg.CountByTier {
		agg.AvgByTier[tier] = float64(sums[tier]) / float64(n)
	}
	for _, p := range points {
		if p.Rating > agg.BestRating {
			agg.BestRating = p.Rating
		}
	}
	return agg
}

// RatingValues extracts the rating column of a series.
func RatingValues(points []model.RatingPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Rating
	}
	return values
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
