// Package miditest builds Standard MIDI File bytes from events placed at
// absolute ticks, for tests.
package miditest

import (
	"bytes"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type Event struct {
	Tick uint32
	Msg  smf.Message
}

func NoteOn(tick uint32, channel, key, velocity uint8) Event {
	return Event{tick, smf.Message(midi.NoteOn(channel, key, velocity))}
}

func NoteOff(tick uint32, channel, key uint8) Event {
	return Event{tick, smf.Message(midi.NoteOff(channel, key))}
}

func Tempo(tick uint32, bpm float64) Event {
	return Event{tick, smf.Message(smf.MetaTempo(bpm))}
}

// TempoMicros writes the raw value, including ones the decoder should refuse.
func TempoMicros(tick uint32, mpq uint32) Event {
	return Event{tick, smf.Message([]byte{0xff, 0x51, 0x03, byte(mpq >> 16), byte(mpq >> 8), byte(mpq)})}
}

func TimeSig(tick uint32, num uint8, denom uint8) Event {
	var power byte
	for d := denom; d > 1; d >>= 1 {
		power++
	}
	return Event{tick, smf.Message([]byte{0xff, 0x58, 0x04, num, power, 24, 8})}
}

func KeySig(tick uint32, accidentals int8, minor bool) Event {
	var mi byte
	if minor {
		mi = 1
	}
	return Event{tick, smf.Message([]byte{0xff, 0x59, 0x02, byte(accidentals), mi})}
}

// Track sorts the events by tick and converts them to delta times, closing
// the track at endTick (or at the last event when endTick is earlier).
func Track(endTick uint32, events ...Event) smf.Track {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Tick < events[j].Tick
	})
	var track smf.Track
	var last uint32
	for _, e := range events {
		track = append(track, smf.Event{Delta: e.Tick - last, Message: e.Msg})
		last = e.Tick
	}
	var rest uint32
	if endTick > last {
		rest = endTick - last
	}
	track.Close(rest)
	return track
}

func Bytes(ticksPerQuarter uint16, tracks ...smf.Track) []byte {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	for _, t := range tracks {
		s.Add(t)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		panic("could not write test midi: " + err.Error())
	}
	return buf.Bytes()
}

// SpecExample is the four-track file from the SMF specification (format 1,
// 96 ticks per quarter note, 4/4 at 120 BPM).
var SpecExample = []byte{
	0x4d, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 1, 0, 4, 0, 0x60,
	// tempo track
	0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x14,
	0, 0xff, 0x58, 4, 4, 2, 0x18, 8,
	0, 0xff, 0x51, 3, 7, 0xa1, 0x20,
	0x83, 0, 0xff, 0x2f, 0,
	// channel 0: program change, E5 with running status note-off
	0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x10,
	0, 0xc0, 5,
	0x81, 0x40, 0x90, 0x4c, 0x20,
	0x81, 0x40, 0x4c, 0,
	0, 0xff, 0x2f, 0,
	// channel 1: G4
	0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0xf,
	0, 0xc1, 0x2e,
	0x60, 0x91, 0x43, 0x40,
	0x82, 0x20, 0x43, 0,
	0, 0xff, 0x2f, 0,
	// channel 2: C3 and C4 together
	0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x15,
	0, 0xc2, 0x46,
	0, 0x92, 0x30, 0x60,
	0, 0x3c, 0x60,
	0x83, 0, 0x30, 0,
	0, 0x3c, 0,
	0, 0xff, 0x2f, 0,
}
