package engine

import (
	"context"
	"time"

	"equitycurve/types"
)

// TickSource is a historical data store a DataFeed can load from.
type TickSource interface {
	GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error)
	GetTicks(ctx context.Context, assetId int, interval types.Interval, start, end time.Time) ([]types.Tick, error)
}

// SignalSource produces one signal per tick. Implementations must not look
// at ticks after the index they are deciding for.
type SignalSource interface {
	Name() string
	Signals(ticks []types.Tick) []types.Signal
}

// Recorder observes sweep jobs as they finish.
type Recorder interface {
	ObserveJob(r JobResult)
}
