package engine

import (
	"equitycurve/types"

	"github.com/shopspring/decimal"
)

// account is the mutable state of a single run. It is owned by one simulate
// call and never shared.
type account struct {
	cash      decimal.Decimal
	shares    decimal.Decimal
	state     types.PositionState
	lastClose decimal.Decimal
	precision int32

	open   *types.Trade
	trades []types.Trade
}

func newAccount(cfg AccountConfig) *account {
	return &account{
		cash:      cfg.InitialCash,
		shares:    decimal.Zero,
		state:     types.PositionFlat,
		lastClose: decimal.Zero,
		precision: cfg.unitPrecision(),
	}
}

// apply executes sig at the tick's close and then marks the account to that
// close. Signals that cannot be honoured are no-ops.
func (a *account) apply(i int, tick types.Tick, sig types.Signal) {
	price := decimal.NewFromFloat(tick.Close)

	switch {
	case sig == types.SignalBuy && a.state == types.PositionFlat:
		a.buy(i, tick.Timestamp, price)
	case sig == types.SignalSell && a.state == types.PositionLong:
		a.sell(i, tick.Timestamp, price)
	}
	a.lastClose = price
}

func (a *account) buy(i int, ts int64, price decimal.Decimal) {
	if !price.IsPositive() {
		return
	}
	// QuoRem truncates toward zero, so qty*price never exceeds cash.
	qty, _ := a.cash.QuoRem(price, a.precision)
	if !qty.IsPositive() {
		return
	}

	a.cash = a.cash.Sub(qty.Mul(price))
	a.shares = qty
	a.state = types.PositionLong
	a.open = &types.Trade{
		ID:         len(a.trades) + 1,
		EntryIndex: i,
		ExitIndex:  -1,
		EntryTime:  ts,
		EntryPrice: price,
		Quantity:   qty,
	}
}

func (a *account) sell(i int, ts int64, price decimal.Decimal) {
	a.cash = a.cash.Add(a.shares.Mul(price))
	if a.open != nil {
		closed := *a.open
		closed.ExitIndex = i
		closed.ExitTime = ts
		closed.ExitPrice = price
		a.trades = append(a.trades, closed)
		a.open = nil
	}
	a.shares = decimal.Zero
	a.state = types.PositionFlat
}

func (a *account) equity() decimal.Decimal {
	return a.cash.Add(a.shares.Mul(a.lastClose))
}

func (a *account) snapshot(ts int64) types.AccountView {
	return types.AccountView{
		Cash:      a.cash,
		Shares:    a.shares,
		State:     a.state,
		LastClose: a.lastClose,
		Equity:    a.equity(),
		Timestamp: ts,
	}
}

// closedTrades returns every round trip, with a still-held position appended
// as an open trade marked at the last close.
func (a *account) closedTrades(lastTs int64) []types.Trade {
	trades := make([]types.Trade, 0, len(a.trades)+1)
	trades = append(trades, a.trades...)
	if a.open != nil {
		t := *a.open
		t.Open = true
		t.ExitTime = lastTs
		t.ExitPrice = a.lastClose
		trades = append(trades, t)
	}
	return trades
}
