package engine

import (
	"errors"
	"fmt"

	"equitycurve/types"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeInitialCash = errors.New("initial cash must not be negative")
	ErrOutputTooShort      = errors.New("output buffer shorter than tick sequence")
	ErrUnknownUnitPolicy   = errors.New("unknown unit policy")
)

// Engine simulates a long-only, unlevered account over aligned tick and
// signal sequences. It holds configuration only, so one Engine may serve any
// number of concurrent runs.
type Engine struct {
	cfg AccountConfig
}

// Result is everything a run produces.
type Result struct {
	InitialCash decimal.Decimal
	Equity      *EquitySeries
	Trades      []types.Trade
	Final       types.AccountView
	LongTicks   int
}

func NewEngine(cfg AccountConfig) (*Engine, error) {
	if cfg.InitialCash.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeInitialCash, cfg.InitialCash)
	}
	if cfg.Units == "" {
		cfg.Units = WholeUnits
	}
	if cfg.Units != WholeUnits && cfg.Units != FractionalUnits {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnitPolicy, cfg.Units)
	}
	if cfg.Units == FractionalUnits && cfg.FractionalPrecision <= 0 {
		cfg.FractionalPrecision = DefaultFractionalPrecision
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) Config() AccountConfig {
	return e.cfg
}

// Run validates the input and returns the equity curve, the round-trip trades
// and the final account state.
func (e *Engine) Run(ticks []types.Tick, signals []types.Signal) (*Result, error) {
	if err := Validate(ticks, signals); err != nil {
		return nil, err
	}

	timestamps := make([]int64, len(ticks))
	values := make([]float64, len(ticks))
	acc, longTicks := e.simulate(ticks, signals, func(i int, equity float64) {
		timestamps[i] = ticks[i].Timestamp
		values[i] = equity
	})

	var lastTs int64
	if len(ticks) > 0 {
		lastTs = ticks[len(ticks)-1].Timestamp
	}
	return &Result{
		InitialCash: e.cfg.InitialCash,
		Equity:      &EquitySeries{timestamps: timestamps, values: values},
		Trades:      acc.closedTrades(lastTs),
		Final:       acc.snapshot(lastTs),
		LongTicks:   longTicks,
	}, nil
}

// RunInto writes one equity value per tick into out, which the caller owns.
// out is left untouched when validation fails.
func (e *Engine) RunInto(ticks []types.Tick, signals []types.Signal, out []float64) error {
	if err := Validate(ticks, signals); err != nil {
		return err
	}
	if len(out) < len(ticks) {
		return fmt.Errorf("%w: %d < %d", ErrOutputTooShort, len(out), len(ticks))
	}
	e.simulate(ticks, signals, func(i int, equity float64) {
		out[i] = equity
	})
	return nil
}

// simulate is the per-tick state machine. It assumes validated input and
// calls emit exactly once per tick, in order.
func (e *Engine) simulate(ticks []types.Tick, signals []types.Signal, emit func(i int, equity float64)) (*account, int) {
	acc := newAccount(e.cfg)
	longTicks := 0
	for i, tick := range ticks {
		acc.apply(i, tick, signals[i])
		if acc.state == types.PositionLong {
			longTicks++
		}
		emit(i, acc.equity().InexactFloat64())
	}
	return acc, longTicks
}
