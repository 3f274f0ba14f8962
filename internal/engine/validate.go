package engine

import (
	"errors"
	"fmt"
	"math"

	"equitycurve/types"
)

var (
	ErrLengthMismatch   = errors.New("tick and signal sequences differ in length")
	ErrNonMonotonicTime = errors.New("tick timestamps are not strictly increasing")
	ErrInvalidPrice     = errors.New("invalid tick price")
	ErrInvalidVolume    = errors.New("invalid tick volume")
	ErrInvalidSignal    = errors.New("invalid signal value")
)

// ValidationError reports the first structural problem found in a run's input.
// Index is the offending tick (or -1 for length mismatches).
type ValidationError struct {
	Kind  error
	Index int
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%v at index %d: %s", e.Kind, e.Index, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Validate checks the preconditions of a run. It never mutates its inputs.
func Validate(ticks []types.Tick, signals []types.Signal) error {
	if len(ticks) != len(signals) {
		return &ValidationError{
			Kind:  ErrLengthMismatch,
			Index: -1,
			Msg:   fmt.Sprintf("%d ticks, %d signals", len(ticks), len(signals)),
		}
	}

	for i, tick := range ticks {
		if !signals[i].Valid() {
			return &ValidationError{Kind: ErrInvalidSignal, Index: i, Msg: fmt.Sprintf("got %d", int32(signals[i]))}
		}
		if msg := checkPrices(tick); msg != "" {
			return &ValidationError{Kind: ErrInvalidPrice, Index: i, Msg: msg}
		}
		if tick.Volume < 0 {
			return &ValidationError{Kind: ErrInvalidVolume, Index: i, Msg: fmt.Sprintf("got %d", tick.Volume)}
		}
		if i > 0 && ticks[i-1].Timestamp >= tick.Timestamp {
			return &ValidationError{
				Kind:  ErrNonMonotonicTime,
				Index: i,
				Msg:   fmt.Sprintf("timestamp %d follows %d", tick.Timestamp, ticks[i-1].Timestamp),
			}
		}
	}
	return nil
}

func checkPrices(t types.Tick) string {
	prices := [...]struct {
		name  string
		value float64
	}{{"open", t.Open}, {"high", t.High}, {"low", t.Low}, {"close", t.Close}}

	for _, p := range prices {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return fmt.Sprintf("%s is not finite", p.name)
		}
		if p.value < 0 {
			return fmt.Sprintf("%s %v is negative", p.name, p.value)
		}
	}
	if t.Low > t.Open || t.Low > t.Close {
		return fmt.Sprintf("low %v above open %v or close %v", t.Low, t.Open, t.Close)
	}
	if t.High < t.Open || t.High < t.Close {
		return fmt.Sprintf("high %v below open %v or close %v", t.High, t.Open, t.Close)
	}
	return ""
}
