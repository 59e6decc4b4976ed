package note

import (
	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/tempo"
	"github.com/jsphweid/staffdex/util"
	"github.com/sirupsen/logrus"
)

type key struct {
	track   int
	channel uint8
	pitch   uint8
}

// Materialize pairs note-on and note-off events into notes. The events must be
// in stream order; the notes come back ordered by start tick with ties in
// event order.
func Materialize(events []model.RawEvent, tm *tempo.Map, lastTick int64) []model.Note {
	var all []model.Note
	open := make(map[key]int)

	closeNote := func(idx int, tick int64) {
		n := &all[idx]
		n.DurationTicks = tick - n.StartTick
		n.Duration = tm.TickToTime(tick) - n.Start
	}

	for _, e := range events {
		ev, ok := e.Payload.(model.NoteEvent)
		if !ok {
			continue
		}
		k := key{e.Track, ev.Channel, ev.Key}
		idx, isOpen := open[k]

		if !ev.On {
			if !isOpen {
				logrus.Debugf("dropping note off without note on: track=%d ch=%d key=%d tick=%d",
					e.Track, ev.Channel, ev.Key, e.Tick)
				continue
			}
			delete(open, k)
			closeNote(idx, e.Tick)
			continue
		}

		if isOpen {
			// a repeated note-on ends the running note
			closeNote(idx, e.Tick)
		}
		open[k] = len(all)
		all = append(all, model.Note{
			Track:     e.Track,
			Channel:   ev.Channel,
			Pitch:     ev.Key,
			Velocity:  ev.Velocity,
			StartTick: e.Tick,
			Start:     tm.TickToTime(e.Tick),
			NextRoot:  model.NoRef,
		})
	}

	for k, idx := range open {
		logrus.Warnf("missing note off: track=%d ch=%d key=%d, closing at tick %d",
			k.track, k.channel, k.pitch, lastTick)
		closeNote(idx, util.Max(lastTick, all[idx].StartTick))
	}

	return all
}

// Sounding returns the indices of notes held at the given tick.
func Sounding(notes []model.Note, tick int64) []int {
	var res []int
	for i, n := range notes {
		if n.StartTick > tick {
			break
		}
		if tick < n.EndTick() {
			res = append(res, i)
		}
	}
	return res
}
