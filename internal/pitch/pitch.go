// Package pitch models musical pitches and note-name parsing.
package pitch

import (
	"fmt"
	"strconv"
	"strings"
)

// Accidental is a semitone adjustment to a letter name.
type Accidental int8

// Accidental values.
const (
	Flat    Accidental = -1
	Natural Accidental = 0
	Sharp   Accidental = 1
)

// Pitch is a spelled note: letter, accidental, octave.
// Octave 0 starts at C; A4 is the 440 Hz A.
type Pitch struct {
	Letter     byte
	Accidental Accidental
	Octave     int
}

// Semitone offsets of the natural letters within an octave.
var letterClass = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Letters of the natural semitone classes; accidental classes are absent.
var naturalLetter = map[int]byte{
	0: 'C', 2: 'D', 4: 'E', 5: 'F', 7: 'G', 9: 'A', 11: 'B',
}

// Class returns the semitone class in [0, 11], enharmonics collapsed.
func (p Pitch) Class() int {
	c := (letterClass[p.Letter] + int(p.Accidental)) % 12
	if c < 0 {
		c += 12
	}
	return c
}

// Abs returns the absolute semitone index relative to C0.
func (p Pitch) Abs() int {
	return p.Octave*12 + letterClass[p.Letter] + int(p.Accidental)
}

// String renders the spelling, e.g. "C#4", "Bb3", "A4".
func (p Pitch) String() string {
	acc := ""
	switch p.Accidental {
	case Sharp:
		acc = "#"
	case Flat:
		acc = "b"
	}
	return fmt.Sprintf("%c%s%d", p.Letter, acc, p.Octave)
}

// IsNatural reports whether the absolute index is a white-key class.
func IsNatural(abs int) bool {
	c := abs % 12
	if c < 0 {
		c += 12
	}
	_, ok := naturalLetter[c]
	return ok
}

func split(abs int) (class, octave int) {
	class = abs % 12
	octave = abs / 12
	if class < 0 {
		class += 12
		octave--
	}
	return class, octave
}

// SpellNatural spells a natural absolute index. The second return is
// false when the index is an accidental class.
func SpellNatural(abs int) (Pitch, bool) {
	class, octave := split(abs)
	letter, ok := naturalLetter[class]
	if !ok {
		return Pitch{}, false
	}
	return Pitch{Letter: letter, Octave: octave}, true
}

// SpellSharp spells an absolute index with a sharp preference: naturals
// stay plain, accidentals take the letter below with a sharp.
func SpellSharp(abs int) Pitch {
	if p, ok := SpellNatural(abs); ok {
		return p
	}
	class, octave := split(abs)
	return Pitch{Letter: naturalLetter[class-1], Accidental: Sharp, Octave: octave}
}

// SpellFlat spells an absolute index with a flat preference: naturals
// stay plain, accidentals take the letter above with a flat. The five
// accidental classes all flatten within the same octave.
func SpellFlat(abs int) Pitch {
	if p, ok := SpellNatural(abs); ok {
		return p
	}
	class, octave := split(abs)
	return Pitch{Letter: naturalLetter[class+1], Accidental: Flat, Octave: octave}
}

// ParseGuess classifies a typed note-name guess into a semitone class.
// Accepted shape: one letter A-G in either case, optionally followed by
// a single accidental marker (# or b, ASCII or the ♯/♭ glyphs). Any
// other input returns ok=false; malformed guesses are an expected case,
// not an error.
func ParseGuess(raw string) (class int, ok bool) {
	runes := []rune(strings.TrimSpace(raw))
	if len(runes) == 0 || len(runes) > 2 {
		return 0, false
	}
	letter := runes[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'G' {
		return 0, false
	}
	acc := Natural
	if len(runes) == 2 {
		switch runes[1] {
		case '#', '♯':
			acc = Sharp
		case 'b', 'B', '♭':
			acc = Flat
		default:
			return 0, false
		}
	}
	return Pitch{Letter: byte(letter), Accidental: acc}.Class(), true
}

// Parse reads a full spelling with octave, e.g. "Ab3" or "c#4". Used
// for config surfaces where a malformed value is a caller error.
func Parse(s string) (Pitch, error) {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) < 2 {
		return Pitch{}, fmt.Errorf("invalid pitch %q", s)
	}
	letter := runes[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'G' {
		return Pitch{}, fmt.Errorf("invalid pitch letter in %q", s)
	}
	rest := runes[1:]
	acc := Natural
	switch rest[0] {
	case '#', '♯':
		acc = Sharp
		rest = rest[1:]
	case 'b', '♭':
		acc = Flat
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(string(rest))
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid pitch octave in %q", s)
	}
	return Pitch{Letter: byte(letter), Accidental: acc, Octave: octave}, nil
}
