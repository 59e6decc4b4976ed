package chord

import (
	"testing"

	"github.com/jsphweid/staffdex/model"
	"github.com/stretchr/testify/assert"
)

func n(track int, tick int64, pitch uint8) model.Note {
	return model.Note{Track: track, StartTick: tick, Pitch: pitch, NextRoot: model.NoRef}
}

func TestCreateChordKey(t *testing.T) {
	notes := []uint8{67, 60, 64}

	assert := assert.New(t)
	assert.Equal("60-64-67", CreateChordKey(notes))
	assert.Equal([]uint8{67, 60, 64}, notes)
	assert.Equal("", CreateChordKey(nil))
}

func TestRootIsHighestPitch(t *testing.T) {
	notes := []model.Note{n(0, 0, 60), n(0, 0, 67), n(0, 0, 64)}
	chords := Build(notes)

	assert := assert.New(t)
	assert.Len(chords, 1)
	assert.Equal(1, chords[0].Root)
	assert.Equal([]int{0, 1, 2}, chords[0].Notes)
	assert.Equal("60-64-67", chords[0].Key)
	assert.False(notes[0].ChordRoot)
	assert.True(notes[1].ChordRoot)
	assert.False(notes[2].ChordRoot)
}

func TestRootTieKeepsEarliestNote(t *testing.T) {
	notes := []model.Note{n(0, 0, 60), n(0, 0, 60)}
	notes[1].Channel = 3
	chords := Build(notes)

	assert.Equal(t, 0, chords[0].Root)
}

func TestChordsAreSplitByTrack(t *testing.T) {
	notes := []model.Note{n(0, 0, 60), n(1, 0, 72), n(0, 0, 64)}
	chords := Build(notes)

	assert := assert.New(t)
	assert.Len(chords, 2)
	assert.Equal([]int{0, 2}, chords[0].Notes)
	assert.Equal(2, chords[0].Root)
	assert.Equal([]int{1}, chords[1].Notes)
}

func TestNextRootFollowsStreamOrder(t *testing.T) {
	notes := []model.Note{n(0, 0, 60), n(1, 10, 62), n(0, 20, 64)}
	Build(notes)

	assert := assert.New(t)
	assert.Equal(1, notes[0].NextRoot)
	assert.Equal(2, notes[1].NextRoot)
	assert.Equal(model.NoRef, notes[2].NextRoot)
}

func TestNextRootLinksAcrossTracks(t *testing.T) {
	notes := []model.Note{
		n(0, 0, 60), n(0, 0, 64),
		n(1, 0, 48),
		n(0, 480, 62),
		n(1, 960, 50),
		n(0, 1920, 65), n(0, 1920, 59),
	}
	chords := Build(notes)

	assert := assert.New(t)
	assert.Len(chords, 5)
	// same tick: the lower track comes first
	assert.Equal(2, notes[1].NextRoot)
	assert.Equal(3, notes[2].NextRoot)
	assert.Equal(4, notes[3].NextRoot)
	assert.Equal(5, notes[4].NextRoot)
	assert.Equal(model.NoRef, notes[5].NextRoot)

	// non-roots never carry a continuation
	assert.Equal(model.NoRef, notes[0].NextRoot)
	assert.Equal(model.NoRef, notes[6].NextRoot)
}

func TestSameTickChordsOrderedByTrack(t *testing.T) {
	notes := []model.Note{n(2, 0, 60), n(1, 0, 55), n(2, 480, 62)}
	chords := Build(notes)

	assert := assert.New(t)
	assert.Equal(1, chords[0].Track)
	assert.Equal(2, chords[1].Track)
	assert.Equal(0, notes[1].NextRoot)
	assert.Equal(2, notes[0].NextRoot)
	assert.Equal(model.NoRef, notes[2].NextRoot)
}

func TestLastChordHasNoContinuation(t *testing.T) {
	notes := []model.Note{n(0, 0, 60)}
	Build(notes)

	assert := assert.New(t)
	assert.True(notes[0].ChordRoot)
	assert.False(notes[0].HasNextRoot())
	assert.Empty(Lines(notes, nil))
}

func TestLines(t *testing.T) {
	notes := []model.Note{n(0, 0, 60), n(0, 0, 64), n(0, 480, 66), n(0, 1920, 70)}
	Build(notes)
	measures := []model.Measure{
		{Number: 1, Key: model.KeySignature{Accidentals: 0, Prev: model.NoRef}, Notes: []int{0, 1, 2}},
		{Number: 2, Key: model.KeySignature{Accidentals: -2, Prev: 0}, Notes: []int{3}},
	}
	lines := Lines(notes, measures)

	assert := assert.New(t)
	assert.Equal([]model.LineVertex{
		{Note: 1, X1: 0, Y1: 37, X2: 480, Y2: 38},
		{Note: 2, X1: 480, Y1: 38, X2: 1920, Y2: 41},
	}, lines)
}
