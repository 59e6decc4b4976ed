package tempo

import (
	"math"
	"sort"
	"time"

	"github.com/jsphweid/staffdex/constants"
	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/util"
	"github.com/sirupsen/logrus"
)

// Map converts between ticks and playback time. Breakpoints are ordered by
// tick with no duplicates and the first one is always at tick 0.
type Map struct {
	ticksPerQuarter int
	points          []model.TempoBreakpoint
}

func New(events []model.RawEvent, ticksPerQuarter int) *Map {
	if ticksPerQuarter <= 0 {
		logrus.Warnf("ticks per quarter note is %d, using 1", ticksPerQuarter)
		ticksPerQuarter = 1
	}
	m := &Map{
		ticksPerQuarter: ticksPerQuarter,
		points:          []model.TempoBreakpoint{{Tick: 0, MicrosPerQuarter: constants.DefaultMicrosPerQuarter}},
	}

	for _, e := range events {
		t, ok := e.Payload.(model.TempoEvent)
		if !ok {
			continue
		}
		if t.MicrosPerQuarter == 0 {
			logrus.WithField("tick", e.Tick).Warn("ignoring tempo of 0, keeping the previous tempo")
			continue
		}
		last := &m.points[len(m.points)-1]
		if e.Tick <= last.Tick {
			// same tick: the later event wins
			last.MicrosPerQuarter = t.MicrosPerQuarter
			continue
		}
		m.points = append(m.points, model.TempoBreakpoint{Tick: e.Tick, MicrosPerQuarter: t.MicrosPerQuarter})
	}

	for i := 1; i < len(m.points); i++ {
		prev := m.points[i-1]
		m.points[i].Start = prev.Start + m.span(m.points[i].Tick-prev.Tick, prev.MicrosPerQuarter)
	}
	return m
}

func (m *Map) span(ticks int64, mpq uint32) time.Duration {
	ns := float64(ticks) * float64(mpq) * 1000 / float64(m.ticksPerQuarter)
	return time.Duration(math.Round(ns))
}

// segment returns the index of the breakpoint in force at tick.
func (m *Map) segment(tick int64) int {
	return sort.Search(len(m.points), func(i int) bool {
		return m.points[i].Tick > tick
	}) - 1
}

func (m *Map) TickToTime(tick int64) time.Duration {
	if tick <= 0 {
		return 0
	}
	p := m.points[m.segment(tick)]
	return p.Start + m.span(tick-p.Tick, p.MicrosPerQuarter)
}

func (m *Map) TimeToTick(t time.Duration) int64 {
	if t <= 0 {
		return 0
	}
	i := sort.Search(len(m.points), func(i int) bool {
		return m.points[i].Start > t
	}) - 1
	p := m.points[i]
	ticks := float64(t-p.Start) * float64(m.ticksPerQuarter) / (float64(p.MicrosPerQuarter) * 1000)
	return p.Tick + int64(math.Round(ticks))
}

func (m *Map) MicrosPerQuarter(tick int64) uint32 {
	return m.points[m.segment(util.Max(tick, 0))].MicrosPerQuarter
}

func (m *Map) BPM(tick int64) float64 {
	return 60000000 / float64(m.MicrosPerQuarter(tick))
}

func (m *Map) TicksPerQuarter() int {
	return m.ticksPerQuarter
}

func (m *Map) Breakpoints() []model.TempoBreakpoint {
	return append([]model.TempoBreakpoint(nil), m.points...)
}
