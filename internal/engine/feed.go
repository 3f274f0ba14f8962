package engine

import (
	"context"
	"fmt"
	"time"

	"equitycurve/types"
)

// DataFeed describes a tick sequence to load from a TickSource.
type DataFeed struct {
	Ticker   string
	Interval types.Interval
	Start    time.Time
	End      time.Time
}

func NewDataFeed(ticker string, interval types.Interval, start, end time.Time) *DataFeed {
	return &DataFeed{
		Ticker:   ticker,
		Interval: interval,
		Start:    start,
		End:      end,
	}
}

func (df *DataFeed) Load(ctx context.Context, src TickSource) ([]types.Tick, error) {
	asset, err := src.GetAssetByTicker(ctx, df.Ticker)
	if err != nil {
		return nil, err
	}
	ticks, err := src.GetTicks(ctx, asset.Id, df.Interval, df.Start, df.End)
	if err != nil {
		return nil, fmt.Errorf("load %s ticks: %w", df.Ticker, err)
	}
	return ticks, nil
}
