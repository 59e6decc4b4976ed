package model

import "time"

// StreamRecord describes where a stream's bytes came from. Parsed structures
// are never stored, only rebuilt from the source.
type StreamRecord struct {
	Id      string    `json:"id"`
	Uri     string    `json:"uri,omitempty"`
	Size    int       `json:"size"`
	Created time.Time `json:"created"`
}
