package midi

import (
	"testing"

	"github.com/jsphweid/staffdex/miditest"
	"github.com/jsphweid/staffdex/model"
	"github.com/stretchr/testify/assert"
)

func TestParseSpecExample(t *testing.T) {
	f, err := Parse(miditest.SpecExample)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(96, f.TicksPerQuarter)
	assert.Equal(4, f.TrackCount)
	assert.Equal(int64(384), f.LastTick)

	var kinds []model.EventKind
	for i, e := range f.Events {
		assert.Equal(i, e.Seq)
		if i > 0 {
			assert.GreaterOrEqual(e.Tick, f.Events[i-1].Tick)
		}
		kinds = append(kinds, e.Kind())
	}
	assert.Contains(kinds, model.KindTempo)
	assert.Contains(kinds, model.KindTimeSig)

	assert.Equal(model.TimeSigEvent{Numerator: 4, Denominator: 4}, f.Events[0].Payload)
	assert.Equal(model.TempoEvent{MicrosPerQuarter: 500000}, f.Events[1].Payload)
}

func TestParseOrdersTiesByTrack(t *testing.T) {
	dat := miditest.Bytes(480,
		miditest.Track(960, miditest.NoteOn(480, 0, 62, 90), miditest.NoteOff(960, 0, 62)),
		miditest.Track(960, miditest.NoteOn(0, 1, 40, 90), miditest.NoteOn(480, 1, 43, 90), miditest.NoteOff(960, 1, 43)),
	)
	f, err := Parse(dat)

	assert := assert.New(t)
	assert.NoError(err)

	var at480 []int
	for _, e := range f.Events {
		if e.Tick == 480 {
			at480 = append(at480, e.Track)
		}
	}
	assert.Equal([]int{0, 1}, at480)
}

func TestVelocityZeroNoteOnIsNoteOff(t *testing.T) {
	f, err := Parse(miditest.SpecExample)

	assert := assert.New(t)
	assert.NoError(err)

	var ons, offs int
	for _, e := range f.Events {
		switch e.Kind() {
		case model.KindNoteOn:
			ons++
		case model.KindNoteOff:
			offs++
		}
	}
	assert.Equal(4, ons)
	assert.Equal(4, offs)
}

func TestDecodesKeySignature(t *testing.T) {
	dat := miditest.Bytes(96, miditest.Track(384, miditest.KeySig(0, -3, true)))
	f, err := Parse(dat)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(model.KeySigEvent{Accidentals: -3, Minor: true}, f.Events[0].Payload)
}

func TestBytesAreCopiedThrough(t *testing.T) {
	f, err := Parse(miditest.SpecExample)

	assert := assert.New(t)
	assert.NoError(err)
	out := f.Bytes()
	assert.Equal(miditest.SpecExample, out)

	// callers cannot reach the stored buffer
	out[0] = 0
	assert.Equal(miditest.SpecExample, f.Bytes())
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := map[string][]byte{
		"empty":            {},
		"bad header":       append([]byte("MThx"), miditest.SpecExample[4:]...),
		"truncated header": miditest.SpecExample[:10],
		"truncated track":  miditest.SpecExample[:40],
	}
	for name, dat := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := Parse(dat)
			assert.Error(t, err)
			assert.Nil(t, f)
		})
	}
}

func TestMetaData(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]byte{7, 0xa1, 0x20}, metaData([]byte{0xff, 0x51, 3, 7, 0xa1, 0x20}))
	assert.Nil(metaData([]byte{0xff, 0x51, 3, 7}))
	assert.Nil(metaData([]byte{0x90, 60, 100}))
}
