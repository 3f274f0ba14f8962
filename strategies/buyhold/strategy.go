// Package buyhold holds the baseline strategies: enter once and never exit,
// or never trade at all.
package buyhold

import (
	"equitycurve/strategies"
	"equitycurve/types"
)

const (
	Name     = "buy-and-hold"
	HoldName = "hold"
)

// BuyAndHold buys on the first tick and holds to the end.
type BuyAndHold struct{}

func (BuyAndHold) Name() string { return Name }

func (BuyAndHold) Signals(ticks []types.Tick) []types.Signal {
	signals := types.Holds(len(ticks))
	if len(signals) > 0 {
		signals[0] = types.SignalBuy
	}
	return signals
}

// Hold never trades; its equity curve is flat at the initial cash.
type Hold struct{}

func (Hold) Name() string { return HoldName }

func (Hold) Signals(ticks []types.Tick) []types.Signal {
	return types.Holds(len(ticks))
}

func Factory(strategies.Params) (strategies.Strategy, error) {
	return BuyAndHold{}, nil
}

func HoldFactory(strategies.Params) (strategies.Strategy, error) {
	return Hold{}, nil
}
