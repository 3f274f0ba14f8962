// Package smacross implements a simple moving average crossover.
package smacross

import (
	"fmt"

	"equitycurve/strategies"
	"equitycurve/types"
)

const (
	Name               = "sma-cross"
	DefaultShortWindow = 50
	DefaultLongWindow  = 200
)

var _ strategies.Strategy = (*Strategy)(nil)

// Strategy is long while the short moving average of closes is above the
// long one. It emits Buy on the tick the regime turns long and Sell on the
// tick it turns flat; every other tick is Hold.
type Strategy struct {
	short int
	long  int
}

func New(short, long int) (*Strategy, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("%w: windows must be positive, got %d/%d", strategies.ErrInvalidParam, short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("%w: short window %d must be below long window %d", strategies.ErrInvalidParam, short, long)
	}
	return &Strategy{short: short, long: long}, nil
}

func Factory(params strategies.Params) (strategies.Strategy, error) {
	short, err := params.Int("short", DefaultShortWindow)
	if err != nil {
		return nil, err
	}
	long, err := params.Int("long", DefaultLongWindow)
	if err != nil {
		return nil, err
	}
	return New(short, long)
}

func (s *Strategy) Name() string {
	return Name
}

func (s *Strategy) Signals(ticks []types.Tick) []types.Signal {
	closes := types.Closes(ticks)
	shortMA := rollingMean(closes, s.short)
	longMA := rollingMean(closes, s.long)

	signals := types.Holds(len(ticks))
	prev := 0
	for i := range closes {
		// The regime is only evaluated once the short window is full.
		state := 0
		if i >= s.short && shortMA[i] > longMA[i] {
			state = 1
		}
		if i > 0 {
			switch state - prev {
			case 1:
				signals[i] = types.SignalBuy
			case -1:
				signals[i] = types.SignalSell
			}
		}
		prev = state
	}
	return signals
}

// rollingMean averages the trailing window of values ending at each index,
// using however many values exist while the window is still filling.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}
