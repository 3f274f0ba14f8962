package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultInitialCash is the bankroll a run starts with when none is configured.
var DefaultInitialCash = decimal.NewFromInt(10000)

// DefaultFractionalPrecision is the number of decimal places a fractional
// position is truncated to.
const DefaultFractionalPrecision int32 = 8

// UnitPolicy decides how cash converts into a position on Buy.
type UnitPolicy string

const (
	// WholeUnits buys floor(cash / close) shares.
	WholeUnits UnitPolicy = "whole"
	// FractionalUnits buys cash / close shares truncated to the configured precision.
	FractionalUnits UnitPolicy = "fractional"
)

func ParseUnitPolicy(s string) (UnitPolicy, error) {
	switch UnitPolicy(s) {
	case "", WholeUnits:
		return WholeUnits, nil
	case FractionalUnits:
		return FractionalUnits, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnitPolicy, s)
}

type AccountConfig struct {
	InitialCash         decimal.Decimal
	Units               UnitPolicy
	FractionalPrecision int32
}

func NewAccountConfig(initialCash decimal.Decimal, units UnitPolicy) AccountConfig {
	if units == "" {
		units = WholeUnits
	}
	return AccountConfig{
		InitialCash:         initialCash,
		Units:               units,
		FractionalPrecision: DefaultFractionalPrecision,
	}
}

// unitPrecision is the number of decimal places a position quantity may carry.
func (c AccountConfig) unitPrecision() int32 {
	if c.Units == FractionalUnits {
		return c.FractionalPrecision
	}
	return 0
}

type ReportingConfig struct {
	SharpeRiskFreeRate decimal.Decimal
	ReportName         string
}

func NewReportingConfig(sharpeRiskFreeRate decimal.Decimal, reportName string) ReportingConfig {
	return ReportingConfig{
		SharpeRiskFreeRate: sharpeRiskFreeRate,
		ReportName:         reportName,
	}
}
