package model

type StreamCreatedResponse struct {
	Id         string `json:"id"`
	NumNotes   int    `json:"num_notes"`
	NumMeasure int    `json:"num_measures"`
	LastTimeMs int64  `json:"last_time_ms"`
	// shortest note in ticks
	MinTicks int64 `json:"min_ticks"`
}

type NoteResponse struct {
	Index      int    `json:"index"`
	Track      int    `json:"track"`
	Channel    uint8  `json:"channel"`
	Pitch      uint8  `json:"pitch"`
	Name       string `json:"name"`
	Velocity   uint8  `json:"velocity"`
	StartTick  int64  `json:"start_tick"`
	StartMs    int64  `json:"start_ms"`
	Ticks      int64  `json:"ticks"`
	DurationMs int64  `json:"duration_ms"`
	ChordRoot  bool   `json:"chord_root"`
	NextRoot   int    `json:"next_root"`
}

type PositionResponse struct {
	Tick    int64   `json:"tick"`
	TimeMs  int64   `json:"time_ms"`
	Measure int     `json:"measure"`
	BPM     float64 `json:"bpm"`
	Tempo   string  `json:"tempo"`
	Key     string  `json:"key"`
}

type LayoutResponse struct {
	Measure   int `json:"measure"`
	KeyWidth  int `json:"key_width"`
	TimeWidth int `json:"time_width"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
