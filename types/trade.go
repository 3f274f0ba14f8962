package types

import (
	"github.com/shopspring/decimal"
)

// Trade is one Buy→Sell round trip. A position still held when the run ends
// is reported with Open set and ExitIndex -1, marked at the final close.
type Trade struct {
	ID         int
	EntryIndex int
	ExitIndex  int
	EntryTime  int64
	ExitTime   int64
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	Quantity   decimal.Decimal
	Open       bool
}

func (t Trade) PnL() decimal.Decimal {
	return t.ExitPrice.Sub(t.EntryPrice).Mul(t.Quantity)
}

// Return is the fractional price change over the trade.
func (t Trade) Return() decimal.Decimal {
	if t.EntryPrice.IsZero() {
		return decimal.Zero
	}
	return t.ExitPrice.Div(t.EntryPrice).Sub(decimal.NewFromInt(1))
}
