package engine

import "time"

// EquityPoint is one entry of an equity curve.
type EquityPoint struct {
	Timestamp int64
	Equity    float64
}

func (p EquityPoint) Time() time.Time {
	return time.Unix(p.Timestamp, 0).UTC()
}

// EquitySeries is the immutable output of a run, index-aligned with the ticks
// it was computed from.
type EquitySeries struct {
	timestamps []int64
	values     []float64
}

// NewEquitySeries copies its inputs. timestamps and values must be the same length.
func NewEquitySeries(timestamps []int64, values []float64) *EquitySeries {
	if len(timestamps) != len(values) {
		panic("engine: equity timestamps and values differ in length")
	}
	return &EquitySeries{
		timestamps: append([]int64(nil), timestamps...),
		values:     append([]float64(nil), values...),
	}
}

func (s *EquitySeries) Len() int {
	return len(s.values)
}

func (s *EquitySeries) At(i int) float64 {
	return s.values[i]
}

func (s *EquitySeries) Timestamp(i int) int64 {
	return s.timestamps[i]
}

// Values returns a copy of the equity values.
func (s *EquitySeries) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// Points returns a copy of the series as timestamped points.
func (s *EquitySeries) Points() []EquityPoint {
	points := make([]EquityPoint, len(s.values))
	for i := range s.values {
		points[i] = EquityPoint{Timestamp: s.timestamps[i], Equity: s.values[i]}
	}
	return points
}

// Last returns the final equity value; ok is false for an empty series.
func (s *EquitySeries) Last() (EquityPoint, bool) {
	if len(s.values) == 0 {
		return EquityPoint{}, false
	}
	n := len(s.values) - 1
	return EquityPoint{Timestamp: s.timestamps[n], Equity: s.values[n]}, true
}
