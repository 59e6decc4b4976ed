package model

import "fmt"

type EventKind uint8

const (
	KindOther EventKind = iota
	KindNoteOn
	KindNoteOff
	KindTempo
	KindTimeSig
	KindKeySig
)

func (k EventKind) String() string {
	switch k {
	case KindNoteOn:
		return "note-on"
	case KindNoteOff:
		return "note-off"
	case KindTempo:
		return "tempo"
	case KindTimeSig:
		return "time-signature"
	case KindKeySig:
		return "key-signature"
	}
	return "other"
}

// Payload is the closed set of event variants the loader produces. Consumers
// switch on the concrete type.
type Payload interface {
	isPayload()
}

type NoteEvent struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
	On       bool
}

type TempoEvent struct {
	MicrosPerQuarter uint32
}

type TimeSigEvent struct {
	Numerator   int
	Denominator int
}

type KeySigEvent struct {
	Accidentals int
	Minor       bool
}

// OtherEvent carries anything the index does not interpret.
type OtherEvent struct {
	Data []byte
}

func (NoteEvent) isPayload()    {}
func (TempoEvent) isPayload()   {}
func (TimeSigEvent) isPayload() {}
func (KeySigEvent) isPayload()  {}
func (OtherEvent) isPayload()   {}

type RawEvent struct {
	Tick  int64
	Track int
	// position in the merged stream, used to keep ties stable
	Seq     int
	Payload Payload
}

func (e RawEvent) Kind() EventKind {
	switch p := e.Payload.(type) {
	case NoteEvent:
		if p.On {
			return KindNoteOn
		}
		return KindNoteOff
	case TempoEvent:
		return KindTempo
	case TimeSigEvent:
		return KindTimeSig
	case KeySigEvent:
		return KindKeySig
	}
	return KindOther
}

func (e RawEvent) String() string {
	return fmt.Sprintf("%d track=%d %v %+v", e.Tick, e.Track, e.Kind(), e.Payload)
}
