package measure

import (
	"sort"

	"github.com/jsphweid/staffdex/constants"
	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/util"
	"github.com/sirupsen/logrus"
)

type Result struct {
	Measures []model.Measure
	// accepted key signatures in stream order; Measure.KeyIndex and
	// KeySignature.Prev point into this slice
	Keys []model.KeySignature
}

type timeChange struct {
	tick int64
	sig  model.TimeSignature
}

func TicksPerMeasure(ts model.TimeSignature, ticksPerQuarter int) int64 {
	if ts.Denominator <= 0 {
		return 0
	}
	return int64(ticksPerQuarter) * 4 * int64(ts.Numerator) / int64(ts.Denominator)
}

// Segment splits [0, lastTick] into measures and assigns every note to the
// measure containing its start tick. Notes must be ordered by start tick.
func Segment(events []model.RawEvent, ticksPerQuarter int, lastTick int64, notes []model.Note) Result {
	changes := timeChanges(events, ticksPerQuarter)
	keys := keySignatures(events)

	var lastNoteTick int64 = -1
	if len(notes) > 0 {
		lastNoteTick = notes[len(notes)-1].StartTick
	}

	var res Result
	res.Keys = keys

	current := model.TimeSignature{
		Numerator:   constants.DefaultTimeSigNumerator,
		Denominator: constants.DefaultTimeSigDenominator,
	}
	pending := 0
	keyIdx := 0
	noteIdx := 0

	for start := int64(0); start == 0 || start < lastTick || start <= lastNoteTick; {
		// a new meter only starts at a boundary at or after its tick
		for pending < len(changes) && changes[pending].tick <= start {
			current = changes[pending].sig
			pending++
		}
		length := TicksPerMeasure(current, ticksPerQuarter)
		end := start + length

		// the last key change inside this measure applies to it
		for keyIdx+1 < len(keys) && keys[keyIdx+1].Tick < end {
			keyIdx++
		}

		m := model.Measure{
			Number:    len(res.Measures) + 1,
			StartTick: start,
			Ticks:     length,
			Time:      current,
			Key:       keys[keyIdx],
			KeyIndex:  keyIdx,
			Notes:     []int{},
		}
		for noteIdx < len(notes) && notes[noteIdx].StartTick < end {
			m.Notes = append(m.Notes, noteIdx)
			noteIdx++
		}
		res.Measures = append(res.Measures, m)
		start = end
	}

	return res
}

func timeChanges(events []model.RawEvent, ticksPerQuarter int) []timeChange {
	var res []timeChange
	for _, e := range events {
		ts, ok := e.Payload.(model.TimeSigEvent)
		if !ok {
			continue
		}
		sig := model.TimeSignature{Numerator: ts.Numerator, Denominator: ts.Denominator}
		if sig.Numerator <= 0 || TicksPerMeasure(sig, ticksPerQuarter) <= 0 {
			logrus.WithField("tick", e.Tick).Warnf("skipping time signature %v", sig)
			continue
		}
		if int64(ticksPerQuarter)*4*int64(sig.Numerator)%int64(sig.Denominator) != 0 {
			// measure lengths must be whole ticks
			logrus.WithField("tick", e.Tick).Warnf("skipping time signature %v: not a whole number of ticks at %d per quarter", sig, ticksPerQuarter)
			continue
		}
		if !sig.Supported() {
			logrus.WithField("tick", e.Tick).Warnf("complex time signature %v cannot be engraved", sig)
		}
		res = append(res, timeChange{e.Tick, sig})
	}
	return res
}

func keySignatures(events []model.RawEvent) []model.KeySignature {
	var res []model.KeySignature
	for _, e := range events {
		ks, ok := e.Payload.(model.KeySigEvent)
		if !ok {
			continue
		}
		if util.Abs(ks.Accidentals) > constants.MaxKeyAccidentals {
			logrus.WithField("tick", e.Tick).Warnf("skipping key signature with %d accidentals", ks.Accidentals)
			continue
		}
		res = append(res, model.KeySignature{
			Accidentals: ks.Accidentals,
			Minor:       ks.Minor,
			Tick:        e.Tick,
			Prev:        len(res) - 1,
		})
	}
	if len(res) == 0 || res[0].Tick > 0 {
		// C major until the first key signature
		res = append([]model.KeySignature{{Prev: model.NoRef}}, res...)
		for i := 1; i < len(res); i++ {
			res[i].Prev = i - 1
		}
	}
	return res
}

// Find returns the 1-based number of the measure containing tick, the last
// measure for ticks past the end, and 0 when there are no measures.
func Find(measures []model.Measure, tick int64) int {
	if len(measures) == 0 {
		return 0
	}
	if tick < 0 {
		return 1
	}
	i := sort.Search(len(measures), func(i int) bool {
		return measures[i].StartTick > tick
	})
	return util.Max(i, 1)
}
