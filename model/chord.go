package model

type Chord struct {
	Track     int    `json:"track"`
	StartTick int64  `json:"start_tick"`
	Key       string `json:"key"`
	// note indices, in stream order
	Notes []int `json:"notes"`
	Root  int   `json:"root"`
}
