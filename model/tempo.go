package model

import "time"

type TempoBreakpoint struct {
	Tick             int64         `json:"tick"`
	MicrosPerQuarter uint32        `json:"micros_per_quarter"`
	Start            time.Duration `json:"start"`
}
