// Package index runs the whole pipeline over one MIDI buffer and answers the
// position queries the engraver and the player make.
package index

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jsphweid/staffdex/accidental"
	"github.com/jsphweid/staffdex/chord"
	"github.com/jsphweid/staffdex/layout"
	"github.com/jsphweid/staffdex/measure"
	"github.com/jsphweid/staffdex/midi"
	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/note"
	"github.com/jsphweid/staffdex/tempo"
	"github.com/pkg/errors"
)

// Index is immutable once built. Lines and display accidentals are computed
// on first use.
type Index struct {
	file     *midi.File
	tempo    *tempo.Map
	notes    []model.Note
	measures []model.Measure
	keys     []model.KeySignature
	chords   []model.Chord
	metrics  layout.Metrics

	linesOnce sync.Once
	lines     []model.LineVertex

	accOnce     sync.Once
	accidentals [][]model.DisplayAccidental
}

func Build(raw []byte) (*Index, error) {
	f, err := midi.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "could not index midi")
	}

	tm := tempo.New(f.Events, f.TicksPerQuarter)
	notes := note.Materialize(f.Events, tm, f.LastTick)
	seg := measure.Segment(f.Events, f.TicksPerQuarter, f.LastTick, notes)
	chords := chord.Build(notes)

	return &Index{
		file:     f,
		tempo:    tm,
		notes:    notes,
		measures: seg.Measures,
		keys:     seg.Keys,
		chords:   chords,
		metrics:  layout.DefaultMetrics(),
	}, nil
}

func (x *Index) File() *midi.File {
	return x.file
}

// Notes returns a copy; the index itself never changes after Build.
func (x *Index) Notes() []model.Note {
	res := make([]model.Note, len(x.notes))
	copy(res, x.notes)
	return res
}

func (x *Index) NoteCount() int {
	return len(x.notes)
}

func (x *Index) TrackCount() int {
	return x.file.TrackCount
}

func (x *Index) TicksPerQuarter() int {
	return x.file.TicksPerQuarter
}

func (x *Index) Measures() []model.Measure {
	return x.measures
}

func (x *Index) MeasureCount() int {
	return len(x.measures)
}

// Measure returns the measure with the 1-based number n.
func (x *Index) Measure(n int) (model.Measure, bool) {
	if n < 1 || n > len(x.measures) {
		return model.Measure{}, false
	}
	return x.measures[n-1], true
}

func (x *Index) Keys() []model.KeySignature {
	return x.keys
}

func (x *Index) Chords() []model.Chord {
	return x.chords
}

func (x *Index) Tempo() []model.TempoBreakpoint {
	return x.tempo.Breakpoints()
}

func (x *Index) LastTick() int64 {
	return x.file.LastTick
}

func (x *Index) LastTime() time.Duration {
	return x.tempo.TickToTime(x.file.LastTick)
}

func (x *Index) TickToTime(tick int64) time.Duration {
	return x.tempo.TickToTime(tick)
}

func (x *Index) TimeToTick(t time.Duration) int64 {
	return x.tempo.TimeToTick(t)
}

func (x *Index) FindMeasure(tick int64) int {
	return measure.Find(x.measures, tick)
}

func (x *Index) TempoAt(tick int64) float64 {
	return x.tempo.BPM(tick)
}

// MinTickLen is the duration in ticks of the shortest note, 0 without notes.
func (x *Index) MinTickLen() int64 {
	var res int64
	for i, n := range x.notes {
		if i == 0 || n.DurationTicks < res {
			res = n.DurationTicks
		}
	}
	return res
}

// TempoLabel reads like "120 BPM", empty when there are no measures.
func (x *Index) TempoLabel(tick int64) string {
	if len(x.measures) == 0 {
		return ""
	}
	return fmt.Sprintf("%d BPM", int(math.Round(x.TempoAt(tick))))
}

func (x *Index) KeyAt(tick int64) (model.KeySignature, bool) {
	n := x.FindMeasure(tick)
	if n == 0 {
		return model.KeySignature{}, false
	}
	return x.measures[n-1].Key, true
}

func (x *Index) KeySigLabel(tick int64) string {
	key, ok := x.KeyAt(tick)
	if !ok {
		return ""
	}
	return key.Label()
}

func (x *Index) LineVertices() []model.LineVertex {
	x.linesOnce.Do(func() {
		x.lines = chord.Lines(x.notes, x.measures)
	})
	return x.lines
}

// DisplayAccidentals returns the accidental decisions for every note of
// measure n, nil when there is no such measure.
func (x *Index) DisplayAccidentals(n int) []model.DisplayAccidental {
	x.accOnce.Do(func() {
		x.accidentals = accidental.All(x.measures, x.notes)
	})
	if n < 1 || n > len(x.accidentals) {
		return nil
	}
	return x.accidentals[n-1]
}

func (x *Index) KeyWidth(n int) int {
	return x.metrics.MeasureKeyWidth(x.measures, n-1, x.keys)
}

func (x *Index) TimeWidth(n int) int {
	m, ok := x.Measure(n)
	if !ok {
		return 0
	}
	return x.metrics.TimeWidth(m.Time)
}

// Bytes returns the buffer the index was built from, unchanged.
func (x *Index) Bytes() []byte {
	return x.file.Bytes()
}
