// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/clef/internal/model"
	"github.com/verte-zerg/clef/internal/rating"
	"github.com/verte-zerg/clef/internal/store"
)

// Report contains precomputed data for stats rendering. The rating is
// always replayed over the complete history; filters narrow what is
// shown, never what the replay sees.
type Report struct {
	Rounds    []model.RoundRecord // filtered, ascending by end time
	Points    []model.RatingPoint // rating points of the filtered rounds
	PointByID map[int64]model.RatingPoint
	Current   float64 // rating after the full history
	Agg       Aggregates
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	full, err := st.ListRounds(ctx, model.StatsConfig{})
	if err != nil {
		return Report{}, err
	}
	fullPoints := rating.Replay(full)
	pointByID := map[int64]model.RatingPoint{}
	idx := 0
	for _, r := range full {
		if r.Questions <= 0 {
			continue // unlimited rounds carry no rating point
		}
		pointByID[r.ID] = fullPoints[idx]
		idx++
	}

	rounds, err := st.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}

	points := make([]model.RatingPoint, 0, len(rounds))
	for _, r := range rounds {
		if p, ok := pointByID[r.ID]; ok {
			points = append(points, p)
		}
	}

	current := rating.Final(fullPoints)
	return Report{
		Rounds:    rounds,
		Points:    points,
		PointByID: pointByID,
		Current:   current,
		Agg:       Aggregate(rounds, points, current),
	}, nil
}
