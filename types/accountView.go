package types

import (
	"github.com/shopspring/decimal"
)

type PositionState string

const (
	PositionFlat PositionState = "FLAT"
	PositionLong PositionState = "LONG"
)

// AccountView is a read-only snapshot of the simulated account after a tick.
type AccountView struct {
	Cash      decimal.Decimal
	Shares    decimal.Decimal
	State     PositionState
	LastClose decimal.Decimal
	Equity    decimal.Decimal
	Timestamp int64
}
