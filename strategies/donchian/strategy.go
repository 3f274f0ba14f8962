package donchian

import (
	"equitycurve/strategies"
	"equitycurve/types"
)

const (
	Name            = "donchian"
	DefaultLookback = 20
)

var _ strategies.Strategy = (*Strategy)(nil)

// Strategy trades channel breakouts: Buy when a tick's high breaks the
// highest high of the preceding lookback ticks, Sell when its low breaks the
// lowest low.
type Strategy struct {
	lookback int
}

func New(lookback int) *Strategy {
	return &Strategy{lookback: lookback}
}

func Factory(params strategies.Params) (strategies.Strategy, error) {
	lookback, err := params.PositiveInt("lookback", DefaultLookback)
	if err != nil {
		return nil, err
	}
	return New(lookback), nil
}

func (s *Strategy) Name() string {
	return Name
}

func (s *Strategy) Signals(ticks []types.Tick) []types.Signal {
	signals := types.Holds(len(ticks))

	// Need lookback completed ticks before the current one
	for i := s.lookback; i < len(ticks); i++ {
		highestHigh, lowestLow := donchianHighLow(ticks[i-s.lookback : i])
		cur := ticks[i]

		breakUp := cur.High > highestHigh
		breakDown := cur.Low < lowestLow
		switch {
		case breakUp && breakDown:
			// Outside bar breaking both sides: no clear direction.
		case breakUp:
			signals[i] = types.SignalBuy
		case breakDown:
			signals[i] = types.SignalSell
		}
	}
	return signals
}

// Utility: Donchian Channel High/Low
func donchianHighLow(ticks []types.Tick) (float64, float64) {
	if len(ticks) == 0 {
		return 0, 0
	}

	highest := ticks[0].High
	lowest := ticks[0].Low

	for _, t := range ticks[1:] {
		if t.High > highest {
			highest = t.High
		}
		if t.Low < lowest {
			lowest = t.Low
		}
	}
	return highest, lowest
}
