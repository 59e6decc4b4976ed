// Package stave folds MIDI pitches onto diatonic staff positions and decides
// how each pitch is spelled under a key signature.
//
// Position 0 is C in MIDI octave -1 (pitch 0); every letter step adds one, so
// middle C (pitch 60) sits at 35 and pitch 127 (G9) at 74.
package stave

import (
	"strconv"

	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/util"
)

const Positions = 75

const (
	C = iota
	D
	E
	F
	G
	A
	B
)

var naturalPitch = [7]int{0, 2, 4, 5, 7, 9, 11}
var letterNames = [7]string{"C", "D", "E", "F", "G", "A", "B"}

var sharpOrder = [7]int{F, C, G, D, A, E, B}
var flatOrder = [7]int{B, E, A, D, G, C, F}

// default spelling of each pitch class as (letter, alteration)
var sharpSpelling = [12][2]int{{C, 0}, {C, 1}, {D, 0}, {D, 1}, {E, 0}, {F, 0}, {F, 1}, {G, 0}, {G, 1}, {A, 0}, {A, 1}, {B, 0}}
var flatSpelling = [12][2]int{{C, 0}, {D, -1}, {D, 0}, {E, -1}, {E, 0}, {F, 0}, {G, -1}, {G, 0}, {A, -1}, {A, 0}, {B, -1}, {B, 0}}

// KeyAlterations returns the alteration (+1 sharp, -1 flat) the key signature
// applies to each letter.
func KeyAlterations(accidentals int) [7]int {
	var res [7]int
	switch {
	case accidentals > 0:
		for i := 0; i < util.Min(accidentals, len(sharpOrder)); i++ {
			res[sharpOrder[i]] = 1
		}
	case accidentals < 0:
		for i := 0; i < util.Min(-accidentals, len(flatOrder)); i++ {
			res[flatOrder[i]] = -1
		}
	}
	return res
}

func Letter(pos int) int {
	return ((pos % 7) + 7) % 7
}

// Spell returns the staff position of pitch and its written accidental under
// the key. Scale tones take the key's spelling; other pitches use sharps, or
// flats in flat keys.
func Spell(pitch uint8, key model.KeySignature) (int, model.Accidental) {
	letter, alt := spelling(int(pitch), key.Accidentals)
	pos, ok := position(int(pitch), letter, alt)
	if !ok {
		letter, alt = defaultSpelling(int(pitch), key.Accidentals)
		pos, _ = position(int(pitch), letter, alt)
	}
	return pos, accidentalFor(alt)
}

func spelling(pitch, accidentals int) (int, int) {
	pc := pitch % 12
	alts := KeyAlterations(accidentals)
	for letter, natural := range naturalPitch {
		if (natural+alts[letter]+12)%12 == pc {
			return letter, alts[letter]
		}
	}
	return defaultSpelling(pitch, accidentals)
}

func defaultSpelling(pitch, accidentals int) (int, int) {
	s := sharpSpelling[pitch%12]
	if accidentals < 0 {
		s = flatSpelling[pitch%12]
	}
	return s[0], s[1]
}

func position(pitch, letter, alt int) (int, bool) {
	octave := (pitch - naturalPitch[letter] - alt) / 12
	pos := octave*7 + letter
	return pos, pos >= 0 && pos < Positions
}

func accidentalFor(alt int) model.Accidental {
	switch {
	case alt > 0:
		return model.AccSharp
	case alt < 0:
		return model.AccFlat
	}
	return model.AccNone
}

// NoteName labels a pitch as spelled under the key, e.g. "F#4" or "Bb3".
func NoteName(pitch uint8, key model.KeySignature) string {
	pos, acc := Spell(pitch, key)
	name := letterNames[Letter(pos)]
	switch acc {
	case model.AccSharp:
		name += "#"
	case model.AccFlat:
		name += "b"
	}
	return name + strconv.Itoa(pos/7-1)
}
