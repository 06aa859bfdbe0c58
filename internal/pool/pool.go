// Package pool builds the set of pitch spellings eligible for a round.
package pool

import (
	"github.com/verte-zerg/clef/internal/model"
	"github.com/verte-zerg/clef/internal/pitch"
)

// ExclusionSet holds spellings that are never drawn, keyed by their
// rendered form ("Gb3").
type ExclusionSet map[string]struct{}

// NewExclusionSet builds an ExclusionSet from pitches.
func NewExclusionSet(pitches []pitch.Pitch) ExclusionSet {
	set := ExclusionSet{}
	for _, p := range pitches {
		set[p.String()] = struct{}{}
	}
	return set
}

// DefaultExclusions returns the stock exclusion list. Gb3 sits just
// below the bottom of the default hard range and reads confusingly
// against Ab3, so it is skipped at every difficulty.
func DefaultExclusions() []pitch.Pitch {
	gb3, err := pitch.Parse("Gb3")
	if err != nil {
		// The literal is well formed; reaching this is a programming error.
		panic(err)
	}
	return []pitch.Pitch{gb3}
}

// Build returns the ordered pool of eligible spellings for every
// absolute semitone index in [lowAbs, highAbs]. Naturals are always
// included with their single spelling. Accidental classes depend on
// difficulty: easy skips them, medium includes the sharp spelling only,
// hard includes both enharmonic spellings as independent entries unless
// they render identically. Excluded spellings are skipped everywhere.
// An empty result is legal; callers must refuse to draw from it.
func Build(lowAbs, highAbs int, difficulty model.Difficulty, exclude ExclusionSet) []pitch.Pitch {
	var out []pitch.Pitch
	add := func(p pitch.Pitch) {
		if _, skip := exclude[p.String()]; skip {
			return
		}
		out = append(out, p)
	}
	for abs := lowAbs; abs <= highAbs; abs++ {
		if natural, ok := pitch.SpellNatural(abs); ok {
			add(natural)
			continue
		}
		switch difficulty {
		case model.Easy:
			// Naturals only.
		case model.Medium:
			add(pitch.SpellSharp(abs))
		case model.Hard:
			sharp := pitch.SpellSharp(abs)
			flat := pitch.SpellFlat(abs)
			add(sharp)
			if flat.String() != sharp.String() {
				add(flat)
			}
		}
	}
	return out
}
