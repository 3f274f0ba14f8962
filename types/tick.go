package types

import "time"

// Tick is one price/volume observation. Field widths match the on-wire record.
type Tick struct {
	Timestamp int64   `json:"timestamp"` // seconds since epoch
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int32   `json:"volume"`
}

func (t Tick) Time() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}

// Closes returns the close price of every tick, in order.
func Closes(ticks []Tick) []float64 {
	out := make([]float64, len(ticks))
	for i, t := range ticks {
		out[i] = t.Close
	}
	return out
}
