// Package live keeps the notes played on a MIDI input as a stream that can be
// queried like a loaded file. Live notes have no tempo map, so their ticks
// are milliseconds since the stream started.
package live

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/util"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

type noteKey struct {
	channel uint8
	pitch   uint8
}

type Stream struct {
	mu      sync.RWMutex
	notes   []model.Note
	open    map[noteKey]int
	started time.Time
	now     func() time.Time

	onChange  func(sounding []model.Note)
	debounced func(f func())
}

// NewStream creates an empty stream. onChange, if not nil, receives the
// sounding notes once input has been quiet for the debounce interval.
func NewStream(wait time.Duration, onChange func(sounding []model.Note)) *Stream {
	s := &Stream{
		open:      make(map[noteKey]int),
		now:       time.Now,
		onChange:  onChange,
		debounced: debounce.New(wait),
	}
	s.started = s.now()
	return s
}

func (s *Stream) elapsed() time.Duration {
	return s.now().Sub(s.started)
}

func (s *Stream) NoteOn(channel, pitch, velocity uint8) {
	s.mu.Lock()
	at := s.elapsed()
	k := noteKey{channel, pitch}
	if idx, ok := s.open[k]; ok {
		s.close(idx, at)
	}
	s.open[k] = len(s.notes)
	s.notes = append(s.notes, model.Note{
		Channel:   channel,
		Pitch:     pitch,
		Velocity:  velocity,
		StartTick: at.Milliseconds(),
		Start:     at,
		NextRoot:  model.NoRef,
	})
	s.mu.Unlock()
	s.notify()
}

func (s *Stream) NoteOff(channel, pitch uint8) {
	s.mu.Lock()
	k := noteKey{channel, pitch}
	idx, ok := s.open[k]
	if !ok {
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{"channel": channel, "pitch": pitch}).Debug("dropping live note-off without note-on")
		return
	}
	s.close(idx, s.elapsed())
	delete(s.open, k)
	s.mu.Unlock()
	s.notify()
}

func (s *Stream) close(idx int, at time.Duration) {
	n := &s.notes[idx]
	n.Duration = util.Max(at, n.Start) - n.Start
	n.DurationTicks = n.Duration.Milliseconds()
}

func (s *Stream) notify() {
	if s.onChange == nil {
		return
	}
	s.debounced(func() {
		s.onChange(s.Sounding())
	})
}

// Notes returns a copy of every note played so far. Notes still held have a
// zero duration.
func (s *Stream) Notes() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Note, len(s.notes))
	copy(res, s.notes)
	return res
}

// Sounding returns the notes currently held, in the order they started.
func (s *Stream) Sounding() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Note, 0, len(s.open))
	for i, n := range s.notes {
		if idx, ok := s.open[noteKey{n.Channel, n.Pitch}]; ok && idx == i {
			res = append(res, n)
		}
	}
	return res
}

func (s *Stream) LastTime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last time.Duration
	for _, n := range s.notes {
		if n.End() > last {
			last = n.End()
		}
	}
	return last
}

func (s *Stream) Reset() {
	s.mu.Lock()
	s.notes = nil
	s.open = make(map[noteKey]int)
	s.started = s.now()
	s.mu.Unlock()
	s.notify()
}

// Handle applies one incoming message. Anything other than note starts and
// ends is ignored.
func (s *Stream) Handle(msg midi.Message) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		s.NoteOn(ch, key, vel)
	case msg.GetNoteEnd(&ch, &key):
		s.NoteOff(ch, key)
	}
}

// Listen feeds the input port into the stream until stop is called.
func (s *Stream) Listen(in drivers.In) (stop func(), err error) {
	return midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		s.Handle(msg)
	}, midi.HandleError(func(err error) {
		logrus.WithField("port", in.String()).Warnf("live input error: %v", err)
	}))
}
