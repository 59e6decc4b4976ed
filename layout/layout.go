// Package layout measures key and time signatures so the engraver can reserve
// horizontal space before the first note of a measure.
package layout

import (
	"github.com/jsphweid/staffdex/constants"
	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/util"
	"github.com/sirupsen/logrus"
)

// Metrics holds glyph widths in pixels. SharpWidths[n] and FlatWidths[n] are
// the widths of a key signature with n accidentals.
type Metrics struct {
	Digits      [10]int
	SharpWidths [constants.MaxKeyAccidentals + 1]int
	FlatWidths  [constants.MaxKeyAccidentals + 1]int
}

const (
	sharpGlyph = 7
	flatGlyph  = 6
	keySpacing = 2
)

func DefaultMetrics() Metrics {
	m := Metrics{
		Digits: [10]int{11, 8, 10, 10, 11, 10, 10, 10, 11, 10},
	}
	for n := 1; n <= constants.MaxKeyAccidentals; n++ {
		m.SharpWidths[n] = n*sharpGlyph + (n-1)*keySpacing
		m.FlatWidths[n] = n*flatGlyph + (n-1)*keySpacing
	}
	return m
}

func validPart(part int) bool {
	return part >= 0 && part <= constants.MaxTimeSigPart
}

// TimeWidth is the width of the wider of the two stacked numbers, or zero
// when either number cannot be drawn.
func (m Metrics) TimeWidth(ts model.TimeSignature) int {
	if !validPart(ts.Numerator) || !validPart(ts.Denominator) {
		logrus.Warnf("complex time signature detected with meter %v", ts)
		return 0
	}
	return util.Max(m.partWidth(ts.Numerator), m.partWidth(ts.Denominator))
}

func (m Metrics) partWidth(part int) int {
	if part < 10 {
		return m.Digits[part]
	}
	// the 1 glyph is narrower when it leads a pair
	if part/10 == 1 {
		return m.Digits[1] - 2 + m.Digits[part%10]
	}
	return m.Digits[part/10] + m.Digits[part%10]
}

type Glyph struct {
	Digit int `json:"digit"`
	X     int `json:"x"`
}

// TimeGlyphs places the digits of one time signature number so that they are
// centered on center.
func (m Metrics) TimeGlyphs(part int, center int) []Glyph {
	if !validPart(part) {
		logrus.Warnf("cannot draw time signature number %d", part)
		return nil
	}
	if part < 10 {
		halfDist := (m.Digits[part] + 1) / 2
		return []Glyph{{Digit: part, X: center - halfDist}}
	}

	left, right := part/10, part%10
	padding := 0
	if left == 1 {
		padding = -2
	}
	wL, wR := m.Digits[left], m.Digits[right]
	leftPos := center - (padding+wL+wR)/2
	rightPos := leftPos + wL + padding
	return []Glyph{{Digit: left, X: leftPos}, {Digit: right, X: rightPos}}
}

type KeyGlyphs struct {
	Symbol model.Accidental `json:"symbol"`
	Count  int              `json:"count"`
	// courtesy naturals cancelling the previous key, drawn first
	Naturals int              `json:"naturals"`
	Cancels  model.Accidental `json:"cancels"`
}

// Key works out what a key signature draws. prev is the key it replaces, nil
// at the start of the piece.
func Key(key model.KeySignature, prev *model.KeySignature) KeyGlyphs {
	var res KeyGlyphs
	switch {
	case key.IsSharp():
		res.Symbol, res.Count = model.AccSharp, key.Size()
	case key.IsFlat():
		res.Symbol, res.Count = model.AccFlat, key.Size()
	default:
		res.Symbol = model.AccNatural
	}
	if prev == nil || prev.Accidentals == 0 {
		return res
	}

	sameDirection := prev.IsSharp() == key.IsSharp() && key.Accidentals != 0
	switch {
	case !sameDirection:
		res.Naturals = prev.Size()
	case prev.Size() > key.Size():
		res.Naturals = prev.Size() - key.Size()
	}
	if res.Naturals > 0 {
		res.Cancels = model.AccSharp
		if prev.IsFlat() {
			res.Cancels = model.AccFlat
		}
	}
	if key.Accidentals == 0 {
		res.Count = res.Naturals
	}
	return res
}

// Previous resolves the predecessor of key within keys, nil when it has none.
func Previous(key model.KeySignature, keys []model.KeySignature) *model.KeySignature {
	if key.Prev < 0 || key.Prev >= len(keys) {
		return nil
	}
	return &keys[key.Prev]
}

func (m Metrics) KeyWidth(key model.KeySignature, keys []model.KeySignature) int {
	if key.Size() > constants.MaxKeyAccidentals {
		logrus.Warnf("cannot draw key signature with %d accidentals", key.Accidentals)
		return 0
	}
	prev := Previous(key, keys)
	if prev != nil && prev.Size() > constants.MaxKeyAccidentals {
		prev = nil
	}
	g := Key(key, prev)

	width := 0
	switch g.Symbol {
	case model.AccSharp:
		width += m.SharpWidths[g.Count]
	case model.AccFlat:
		width += m.FlatWidths[g.Count]
	}
	if g.Naturals > 0 {
		// naturals take the spacing of the accidentals they cancel
		switch g.Cancels {
		case model.AccSharp:
			width += m.SharpWidths[g.Naturals] - 3
		case model.AccFlat:
			width += m.FlatWidths[g.Naturals] - 1
		}
	}
	return width
}

// MeasureKeyWidth is the key signature width of measures[i]. Courtesy
// naturals are only drawn in the measure where the key changes.
func (m Metrics) MeasureKeyWidth(measures []model.Measure, i int, keys []model.KeySignature) int {
	if i < 0 || i >= len(measures) {
		return 0
	}
	cur := measures[i]
	if i > 0 && measures[i-1].KeyIndex == cur.KeyIndex {
		keys = nil
	}
	return m.KeyWidth(cur.Key, keys)
}
