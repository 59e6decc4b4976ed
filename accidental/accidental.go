// Package accidental decides which accidental glyph each note of a measure
// shows, given the key signature and the notes already written earlier in the
// same measure.
package accidental

import (
	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/stave"
	"github.com/sirupsen/logrus"
)

type State uint8

const (
	Clear State = iota
	Sharp
	Flat
	Natural
	SharpMult
	FlatMult
)

func (s State) String() string {
	switch s {
	case Clear:
		return "CLEAR"
	case Sharp:
		return "SHARP"
	case Flat:
		return "FLAT"
	case Natural:
		return "NATURAL"
	case SharpMult:
		return "SHARP_MULT"
	case FlatMult:
		return "FLAT_MULT"
	}
	return "UNKNOWN"
}

type transition struct {
	display model.Accidental
	next    State
}

// indexed by [state][input], inputs AccNone, AccSharp, AccFlat
var table = [6][3]transition{
	Clear: {
		{model.AccNone, Clear},
		{model.AccSharp, Sharp},
		{model.AccFlat, Flat},
	},
	Sharp: {
		{model.AccNatural, Natural},
		{model.AccNone, SharpMult},
		{model.AccFlat, Flat},
	},
	Flat: {
		{model.AccNatural, Natural},
		{model.AccSharp, Sharp},
		{model.AccNone, FlatMult},
	},
	Natural: {
		{model.AccNone, Clear},
		{model.AccSharp, Sharp},
		{model.AccFlat, Flat},
	},
	SharpMult: {
		{model.AccNatural, Natural},
		{model.AccNone, SharpMult},
		{model.AccFlat, Flat},
	},
	FlatMult: {
		{model.AccNatural, Natural},
		{model.AccSharp, Sharp},
		{model.AccNone, FlatMult},
	},
}

// Advance feeds the underlying accidental of one note into the state of its
// stave position and returns the glyph to display. Pairs outside the table
// leave the state alone and show nothing.
func Advance(state *State, in model.Accidental) model.Accidental {
	if int(*state) >= len(table) || int(in) >= len(table[0]) {
		logrus.WithFields(logrus.Fields{
			"state": *state,
			"input": in,
		}).Warn("invalid accidental transition")
		return model.AccNone
	}
	t := table[*state][in]
	*state = t.next
	return t.display
}

// Seeded returns the state a position starts each measure in under the key.
func Seeded(pos int, key model.KeySignature) State {
	switch stave.KeyAlterations(key.Accidentals)[stave.Letter(pos)] {
	case 1:
		return Sharp
	case -1:
		return Flat
	}
	return Clear
}

// Engine reuses one state per stave position across measures.
type Engine struct {
	states [stave.Positions]State
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Seed(key model.KeySignature) {
	for pos := range e.states {
		e.states[pos] = Seeded(pos, key)
	}
}

// State reports the current state of a stave position.
func (e *Engine) State(pos int) State {
	if pos < 0 || pos >= len(e.states) {
		return Clear
	}
	return e.states[pos]
}

// Measure reseeds from the measure's key and runs every note of the measure
// through the machine in order, one result per note.
func (e *Engine) Measure(m model.Measure, notes []model.Note) []model.DisplayAccidental {
	e.Seed(m.Key)
	res := make([]model.DisplayAccidental, 0, len(m.Notes))
	for _, idx := range m.Notes {
		if idx < 0 || idx >= len(notes) {
			logrus.WithField("measure", m.Number).Warnf("note %d out of range", idx)
			continue
		}
		pos, acc := stave.Spell(notes[idx].Pitch, m.Key)
		res = append(res, model.DisplayAccidental{
			Note:       idx,
			StavePos:   pos,
			Accidental: acc,
			Display:    Advance(&e.states[pos], acc),
		})
	}
	return res
}

// All runs every measure in order through a single engine.
func All(measures []model.Measure, notes []model.Note) [][]model.DisplayAccidental {
	e := NewEngine()
	res := make([][]model.DisplayAccidental, len(measures))
	for i, m := range measures {
		res[i] = e.Measure(m, notes)
	}
	return res
}
