package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/stave"
)

func CreateChordKey(notes []uint8) string {
	sorted := append([]uint8(nil), notes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

type chordKey struct {
	track int
	tick  int64
}

// Build groups notes that start on the same tick in the same track, marks the
// highest note of each chord as its root and links every root to the
// chronologically next root. Notes must be ordered by start tick.
func Build(notes []model.Note) []model.Chord {
	var chords []model.Chord
	byKey := make(map[chordKey]int)

	for i, n := range notes {
		k := chordKey{n.Track, n.StartTick}
		idx, ok := byKey[k]
		if !ok {
			idx = len(chords)
			byKey[k] = idx
			chords = append(chords, model.Chord{Track: n.Track, StartTick: n.StartTick, Root: i})
		}
		c := &chords[idx]
		c.Notes = append(c.Notes, i)
		if isHigherRoot(notes[i], i, notes[c.Root], c.Root) {
			c.Root = i
		}
	}

	// one chain through the whole stream: tick, then track, then first note
	sort.SliceStable(chords, func(i, j int) bool {
		a, b := chords[i], chords[j]
		if a.StartTick != b.StartTick {
			return a.StartTick < b.StartTick
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		return a.Notes[0] < b.Notes[0]
	})

	lastRoot := model.NoRef
	for i := range chords {
		c := &chords[i]
		var pitches []uint8
		for _, n := range c.Notes {
			pitches = append(pitches, notes[n].Pitch)
			notes[n].ChordRoot = false
			notes[n].NextRoot = model.NoRef
		}
		c.Key = CreateChordKey(pitches)
		notes[c.Root].ChordRoot = true

		if lastRoot != model.NoRef {
			notes[lastRoot].NextRoot = c.Root
		}
		lastRoot = c.Root
	}

	return chords
}

// highest pitch wins, then the lower track, then the earlier note
func isHigherRoot(a model.Note, ai int, b model.Note, bi int) bool {
	if a.Pitch != b.Pitch {
		return a.Pitch > b.Pitch
	}
	if a.Track != b.Track {
		return a.Track < b.Track
	}
	return ai < bi
}

// Lines returns one vertex per chord root that has a continuation, placed at
// (tick, stave position) as spelled under the key of the root's measure.
func Lines(notes []model.Note, measures []model.Measure) []model.LineVertex {
	keyOf := make([]model.KeySignature, len(notes))
	for i := range keyOf {
		keyOf[i].Prev = model.NoRef
	}
	for _, m := range measures {
		for _, n := range m.Notes {
			keyOf[n] = m.Key
		}
	}

	var res []model.LineVertex
	for i, n := range notes {
		if !n.ChordRoot || !n.HasNextRoot() {
			continue
		}
		next := n.NextRoot
		if next < 0 || next >= len(notes) {
			continue
		}
		y1, _ := stave.Spell(n.Pitch, keyOf[i])
		y2, _ := stave.Spell(notes[next].Pitch, keyOf[next])
		res = append(res, model.LineVertex{
			Note: i,
			X1:   n.StartTick,
			Y1:   y1,
			X2:   notes[next].StartTick,
			Y2:   y2,
		})
	}
	return res
}
