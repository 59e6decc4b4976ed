package live

import (
	"sync"
	"testing"
	"time"

	"github.com/jsphweid/staffdex/model"
	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestStream(onChange func([]model.Note)) (*Stream, *clock) {
	c := &clock{t: time.Unix(1000, 0)}
	s := NewStream(time.Millisecond, onChange)
	s.now = c.now
	s.started = c.now()
	return s, c
}

func TestNoteOnOff(t *testing.T) {
	s, c := newTestStream(nil)
	s.NoteOn(0, 60, 100)
	c.advance(250 * time.Millisecond)
	s.NoteOn(0, 64, 90)
	c.advance(250 * time.Millisecond)
	s.NoteOff(0, 60)

	notes := s.Notes()

	assert := assert.New(t)
	assert.Len(notes, 2)
	assert.Equal(uint8(60), notes[0].Pitch)
	assert.Equal(500*time.Millisecond, notes[0].Duration)
	assert.Equal(int64(500), notes[0].DurationTicks)
	assert.Equal(int64(250), notes[1].StartTick)
	assert.Equal(time.Duration(0), notes[1].Duration)
	assert.Equal(model.NoRef, notes[1].NextRoot)

	sounding := s.Sounding()
	assert.Len(sounding, 1)
	assert.Equal(uint8(64), sounding[0].Pitch)
	assert.Equal(500*time.Millisecond, s.LastTime())
}

func TestRetriggerClosesPreviousNote(t *testing.T) {
	s, c := newTestStream(nil)
	s.NoteOn(0, 60, 100)
	c.advance(100 * time.Millisecond)
	s.NoteOn(0, 60, 80)

	notes := s.Notes()

	assert := assert.New(t)
	assert.Len(notes, 2)
	assert.Equal(100*time.Millisecond, notes[0].Duration)
	assert.Len(s.Sounding(), 1)
	assert.Equal(uint8(80), s.Sounding()[0].Velocity)
}

func TestOrphanNoteOffIsDropped(t *testing.T) {
	s, _ := newTestStream(nil)
	s.NoteOff(0, 60)

	assert.Empty(t, s.Notes())
}

func TestNotesReturnsCopy(t *testing.T) {
	s, _ := newTestStream(nil)
	s.NoteOn(0, 60, 100)
	notes := s.Notes()
	notes[0].Pitch = 1

	assert.Equal(t, uint8(60), s.Notes()[0].Pitch)
}

func TestReset(t *testing.T) {
	s, _ := newTestStream(nil)
	s.NoteOn(0, 60, 100)
	s.Reset()

	assert := assert.New(t)
	assert.Empty(s.Notes())
	assert.Empty(s.Sounding())
	assert.Equal(time.Duration(0), s.LastTime())
}

func TestHandle(t *testing.T) {
	s, _ := newTestStream(nil)
	s.Handle(midi.NoteOn(1, 62, 100))
	s.Handle(midi.NoteOn(1, 65, 100))
	s.Handle(midi.NoteOn(1, 62, 0))
	s.Handle(midi.ControlChange(1, 64, 127))

	sounding := s.Sounding()

	assert := assert.New(t)
	assert.Len(s.Notes(), 2)
	assert.Len(sounding, 1)
	assert.Equal(uint8(65), sounding[0].Pitch)
	assert.Equal(uint8(1), sounding[0].Channel)
}

func TestChangesAreDebounced(t *testing.T) {
	var mu sync.Mutex
	var calls [][]model.Note
	done := make(chan struct{}, 10)
	s := NewStream(50*time.Millisecond, func(sounding []model.Note) {
		mu.Lock()
		calls = append(calls, sounding)
		mu.Unlock()
		done <- struct{}{}
	})

	s.NoteOn(0, 60, 100)
	s.NoteOn(0, 64, 100)
	s.NoteOn(0, 67, 100)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, calls, 1)
	assert.Len(t, calls[0], 3)
}

func TestConcurrentReadersSeeWholeNotes(t *testing.T) {
	s := NewStream(time.Millisecond, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.NoteOn(0, uint8(i%128), 100)
			s.NoteOff(0, uint8(i%128))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, n := range s.Notes() {
				assert.Equal(t, model.NoRef, n.NextRoot)
			}
		}
	}()
	wg.Wait()

	assert.Len(t, s.Notes(), 200)
}
