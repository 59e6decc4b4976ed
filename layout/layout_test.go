package layout

import (
	"testing"

	"github.com/jsphweid/staffdex/model"
	"github.com/stretchr/testify/assert"
)

func TestTimeWidth(t *testing.T) {
	m := DefaultMetrics()
	cases := []struct {
		num, denom int
		want       int
	}{
		{4, 4, 11},
		{3, 8, 11},
		{2, 2, 10},
		{12, 8, 8 - 2 + 10},
		{10, 8, 8 - 2 + 11},
		{25, 16, 20},
		{99, 99, 20},
	}
	for _, c := range cases {
		ts := model.TimeSignature{Numerator: c.num, Denominator: c.denom}
		t.Run(ts.String(), func(t *testing.T) {
			assert.Equal(t, c.want, m.TimeWidth(ts))
		})
	}
}

func TestTimeWidthRejectsComplexMeters(t *testing.T) {
	m := DefaultMetrics()

	assert := assert.New(t)
	assert.Equal(0, m.TimeWidth(model.TimeSignature{Numerator: 100, Denominator: 4}))
	assert.Equal(0, m.TimeWidth(model.TimeSignature{Numerator: 4, Denominator: 128}))
	assert.Equal(0, m.TimeWidth(model.TimeSignature{Numerator: -1, Denominator: 4}))
	assert.Nil(m.TimeGlyphs(100, 50))
}

func TestTimeGlyphs(t *testing.T) {
	m := DefaultMetrics()

	assert := assert.New(t)
	assert.Equal([]Glyph{{Digit: 4, X: 44}}, m.TimeGlyphs(4, 50))
	// 1 and 2: leftPos = 50 - (-2+8+10)/2 = 42, rightPos = 42+8-2
	assert.Equal([]Glyph{{Digit: 1, X: 42}, {Digit: 2, X: 48}}, m.TimeGlyphs(12, 50))
	// 2 and 5: leftPos = 50 - 20/2
	assert.Equal([]Glyph{{Digit: 2, X: 40}, {Digit: 5, X: 50}}, m.TimeGlyphs(25, 50))
}

func keyList(accidentals ...int) []model.KeySignature {
	var res []model.KeySignature
	for i, a := range accidentals {
		res = append(res, model.KeySignature{Accidentals: a, Prev: i - 1})
	}
	return res
}

func TestKeyWidth(t *testing.T) {
	m := DefaultMetrics()
	keys := keyList(0, 2, 0, -3, -1, 4)

	assert := assert.New(t)
	assert.Equal(0, m.KeyWidth(keys[0], keys))
	assert.Equal(m.SharpWidths[2], m.KeyWidth(keys[1], keys))
	// two courtesy naturals for the cancelled sharps
	assert.Equal(m.SharpWidths[2]-3, m.KeyWidth(keys[2], keys))
	assert.Equal(m.FlatWidths[3], m.KeyWidth(keys[3], keys))
	// one flat plus two courtesy naturals
	assert.Equal(m.FlatWidths[1]+m.FlatWidths[2]-1, m.KeyWidth(keys[4], keys))
	// direction flip cancels every previous flat
	assert.Equal(m.SharpWidths[4]+m.FlatWidths[1]-1, m.KeyWidth(keys[5], keys))
}

func TestKeyWidthRejectsOversizedKey(t *testing.T) {
	m := DefaultMetrics()
	assert.Equal(t, 0, m.KeyWidth(model.KeySignature{Accidentals: 9, Prev: model.NoRef}, nil))
}

func TestKey(t *testing.T) {
	keys := keyList(3, 0, 5)

	assert := assert.New(t)
	assert.Equal(KeyGlyphs{Symbol: model.AccSharp, Count: 3}, Key(keys[0], Previous(keys[0], keys)))
	assert.Equal(KeyGlyphs{Symbol: model.AccNatural, Count: 3, Naturals: 3, Cancels: model.AccSharp},
		Key(keys[1], Previous(keys[1], keys)))
	assert.Equal(KeyGlyphs{Symbol: model.AccSharp, Count: 5}, Key(keys[2], Previous(keys[2], keys)))
	assert.Nil(Previous(model.KeySignature{Prev: 4}, keys))
}

func TestMeasureKeyWidthCancelsOnlyAtChange(t *testing.T) {
	m := DefaultMetrics()
	keys := keyList(2, 0)
	measures := []model.Measure{
		{Number: 1, Key: keys[0], KeyIndex: 0},
		{Number: 2, Key: keys[0], KeyIndex: 0},
		{Number: 3, Key: keys[1], KeyIndex: 1},
		{Number: 4, Key: keys[1], KeyIndex: 1},
	}

	assert := assert.New(t)
	assert.Equal(m.SharpWidths[2], m.MeasureKeyWidth(measures, 0, keys))
	assert.Equal(m.SharpWidths[2], m.MeasureKeyWidth(measures, 1, keys))
	assert.Equal(m.SharpWidths[2]-3, m.MeasureKeyWidth(measures, 2, keys))
	assert.Equal(0, m.MeasureKeyWidth(measures, 3, keys))
	assert.Equal(0, m.MeasureKeyWidth(measures, 4, keys))
}
