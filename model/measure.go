package model

type Measure struct {
	Number    int           `json:"number"`
	StartTick int64         `json:"start_tick"`
	Ticks     int64         `json:"ticks"`
	Time      TimeSignature `json:"time"`
	Key       KeySignature  `json:"key"`
	KeyIndex  int           `json:"key_index"`
	// indices into the note slice, in start order
	Notes []int `json:"notes"`
}

func (m Measure) EndTick() int64 {
	return m.StartTick + m.Ticks
}

func (m Measure) Contains(tick int64) bool {
	return tick >= m.StartTick && tick < m.EndTick()
}
