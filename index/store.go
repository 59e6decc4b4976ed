package index

import (
	"sync"
	"time"

	"github.com/jsphweid/staffdex/constants"
	"github.com/jsphweid/staffdex/live"
	"github.com/jsphweid/staffdex/model"
	"github.com/sirupsen/logrus"
)

// Store holds the active stream: the last successfully loaded file, or the
// attached live input while live mode is on. Every query works on one
// snapshot taken under the read lock.
type Store struct {
	mu       sync.RWMutex
	current  *Index
	live     *live.Stream
	liveMode bool
}

func NewStore() *Store {
	return &Store{}
}

// Load indexes raw and makes it the active file. On failure the previous
// index stays in place.
func (s *Store) Load(raw []byte) error {
	x, err := Build(raw)
	if err != nil {
		logrus.Warnf("keeping previous stream: %v", err)
		return err
	}
	s.mu.Lock()
	s.current = x
	s.mu.Unlock()
	return nil
}

func (s *Store) Current() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Attach(l *live.Stream) {
	s.mu.Lock()
	s.live = l
	s.mu.Unlock()
}

func (s *Store) SetLive(on bool) {
	s.mu.Lock()
	s.liveMode = on
	s.mu.Unlock()
}

func (s *Store) Live() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liveMode
}

// Snapshot is the active stream as seen at one instant. A request that asks
// several questions takes one snapshot so a mode switch cannot split it.
type Snapshot struct {
	// nil in live mode and before the first successful load
	File *Index
	// nil unless live mode is on and a stream is attached
	Stream *live.Stream
	Live   bool
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.liveMode {
		return Snapshot{Stream: s.live, Live: true}
	}
	return Snapshot{File: s.current}
}

func (s *Store) Notes() []model.Note {
	return s.Snapshot().Notes()
}

func (s *Store) LastTime() time.Duration {
	return s.Snapshot().LastTime()
}

func (s *Store) Measures() []model.Measure {
	return s.Snapshot().Measures()
}

func (s *Store) MeasureCount() int {
	return s.Snapshot().MeasureCount()
}

func (s *Store) FindMeasure(tick int64) int {
	return s.Snapshot().FindMeasure(tick)
}

func (s *Store) TempoAt(tick int64) float64 {
	return s.Snapshot().TempoAt(tick)
}

func (s *Store) TempoLabel(tick int64) string {
	return s.Snapshot().TempoLabel(tick)
}

func (s *Store) KeySigLabel(tick int64) string {
	return s.Snapshot().KeySigLabel(tick)
}

func (s *Store) MinTickLen() int64 {
	return s.Snapshot().MinTickLen()
}

func (s *Store) Bytes() []byte {
	return s.Snapshot().Bytes()
}

func (snap Snapshot) Notes() []model.Note {
	switch {
	case snap.Stream != nil:
		return snap.Stream.Notes()
	case snap.File != nil:
		return snap.File.Notes()
	}
	return nil
}

func (snap Snapshot) LastTime() time.Duration {
	switch {
	case snap.Stream != nil:
		return snap.Stream.LastTime()
	case snap.File != nil:
		return snap.File.LastTime()
	}
	return 0
}

func (snap Snapshot) Measures() []model.Measure {
	if snap.File != nil {
		return snap.File.Measures()
	}
	return nil
}

func (snap Snapshot) MeasureCount() int {
	if snap.File != nil {
		return snap.File.MeasureCount()
	}
	return 0
}

func (snap Snapshot) FindMeasure(tick int64) int {
	if snap.File != nil {
		return snap.File.FindMeasure(tick)
	}
	return 0
}

// TempoAt reports 120 BPM when there is no tempo map to ask.
func (snap Snapshot) TempoAt(tick int64) float64 {
	if snap.File != nil {
		return snap.File.TempoAt(tick)
	}
	return constants.LiveTempoBPM
}

func (snap Snapshot) TempoLabel(tick int64) string {
	if snap.File != nil {
		return snap.File.TempoLabel(tick)
	}
	return ""
}

func (snap Snapshot) KeySigLabel(tick int64) string {
	if snap.File != nil {
		return snap.File.KeySigLabel(tick)
	}
	return ""
}

func (snap Snapshot) MinTickLen() int64 {
	switch {
	case snap.Live:
		return constants.LiveMinTickLen
	case snap.File != nil:
		return snap.File.MinTickLen()
	}
	return 0
}

// TickToTime and TimeToTick report 0 without a file.
func (snap Snapshot) TickToTime(tick int64) time.Duration {
	if snap.File != nil {
		return snap.File.TickToTime(tick)
	}
	return 0
}

func (snap Snapshot) TimeToTick(t time.Duration) int64 {
	if snap.File != nil {
		return snap.File.TimeToTick(t)
	}
	return 0
}

// Bytes returns the buffer of the loaded file. Live input has none.
func (snap Snapshot) Bytes() []byte {
	if snap.File != nil {
		return snap.File.Bytes()
	}
	return nil
}
