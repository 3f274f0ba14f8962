package engine

import (
	"equitycurve/types"

	"github.com/shopspring/decimal"
)

// 2020-01-01T00:00:00Z
const baseTs int64 = 1577836800

const day int64 = 24 * 60 * 60

// flatTicks builds daily ticks whose OHLC all equal the given close.
func flatTicks(closes ...float64) []types.Tick {
	ticks := make([]types.Tick, len(closes))
	for i, c := range closes {
		ticks[i] = types.Tick{
			Timestamp: baseTs + int64(i)*day,
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    100,
		}
	}
	return ticks
}

func signals(s ...types.Signal) []types.Signal {
	return s
}

const (
	B = types.SignalBuy
	S = types.SignalSell
	H = types.SignalHold
)

func mustEngine(cash int64, units UnitPolicy) *Engine {
	e, err := NewEngine(NewAccountConfig(decimal.NewFromInt(cash), units))
	if err != nil {
		panic(err)
	}
	return e
}
