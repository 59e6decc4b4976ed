package model

import "time"

// NoRef marks an absent index reference (next chord root, previous key).
const NoRef = -1

type Note struct {
	Track    int
	Channel  uint8
	Pitch    uint8
	Velocity uint8

	StartTick     int64
	Start         time.Duration
	DurationTicks int64
	Duration      time.Duration

	// written by the chord builder only
	ChordRoot bool
	NextRoot  int
}

func (n Note) EndTick() int64 {
	return n.StartTick + n.DurationTicks
}

func (n Note) End() time.Duration {
	return n.Start + n.Duration
}

// Sounding reports whether the note is held at the given playback time.
func (n Note) Sounding(at time.Duration) bool {
	return at >= n.Start && at < n.End()
}

func (n Note) HasNextRoot() bool {
	return n.NextRoot != NoRef
}

type Accidental uint8

const (
	AccNone Accidental = iota
	AccSharp
	AccFlat
	AccNatural
)

func (a Accidental) String() string {
	switch a {
	case AccSharp:
		return "sharp"
	case AccFlat:
		return "flat"
	case AccNatural:
		return "natural"
	}
	return "none"
}

func (a Accidental) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

type DisplayAccidental struct {
	Note       int        `json:"note"`
	StavePos   int        `json:"stave_pos"`
	Accidental Accidental `json:"accidental"`
	Display    Accidental `json:"display"`
}

// LineVertex is one segment of a melodic line, from a chord root to the next
// root of the same line. X is in ticks, Y is a stave position.
type LineVertex struct {
	Note int   `json:"note"`
	X1   int64 `json:"x1"`
	Y1   int   `json:"y1"`
	X2   int64 `json:"x2"`
	Y2   int   `json:"y2"`
}
