// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/clef/internal/pitch"
)

// Difficulty selects the note pool policy and the rating opponent tier.
type Difficulty string

// Difficulty tiers.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Valid reports whether d is a known tier.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Config defines practice settings for one round.
type Config struct {
	Difficulty    Difficulty
	Timed         bool
	TimeLimitSecs int
	Questions     int // 0 = unlimited
	Low           pitch.Pitch
	High          pitch.Pitch
	Exclusions    []pitch.Pitch
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Difficulty  string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RoundSummary is the immutable record of a finished round.
type RoundSummary struct {
	StartedAt     time.Time
	EndedAt       time.Time
	Difficulty    Difficulty
	Timed         bool
	TimeLimitSecs int
	Questions     int // target, 0 = unlimited
	Answered      int
	Score         int
	Low           pitch.Pitch
	High          pitch.Pitch
}

// RoundRecord is a persisted RoundSummary.
type RoundRecord struct {
	ID int64
	RoundSummary
}

// RatingPoint is one step of the replayed rating series.
type RatingPoint struct {
	At     time.Time
	Rating float64
	Delta  float64
}
