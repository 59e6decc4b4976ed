package model

import "fmt"

type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// Supported is false for meters the engraving front end cannot draw.
func (t TimeSignature) Supported() bool {
	return t.Numerator > 0 && t.Numerator <= 99 && t.Denominator > 0 && t.Denominator <= 99
}

func (t TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", t.Numerator, t.Denominator)
}

type KeySignature struct {
	// negative counts are flats
	Accidentals int   `json:"accidentals"`
	Minor       bool  `json:"minor"`
	Tick        int64 `json:"tick"`
	// index of the previous key signature in stream order, or NoRef
	Prev int `json:"prev"`
}

func (k KeySignature) IsSharp() bool {
	return k.Accidentals > 0
}

func (k KeySignature) IsFlat() bool {
	return k.Accidentals < 0
}

func (k KeySignature) Size() int {
	if k.Accidentals < 0 {
		return -k.Accidentals
	}
	return k.Accidentals
}

var majorLabels = [15]string{"bC", "bG", "bD", "bA", "bE", "bB", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
var minorLabels = [15]string{"abm", "ebm", "bbm", "fm", "cm", "gm", "dm", "am", "em", "bm", "f#m", "c#m", "g#m", "d#m", "a#m"}

// Label names the key the way the front end prints it, flats prefixed with b.
func (k KeySignature) Label() string {
	idx := k.Accidentals + 7
	if idx < 0 || idx >= len(majorLabels) {
		return ""
	}
	if k.Minor {
		return minorLabels[idx]
	}
	return majorLabels[idx]
}
