package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"equitycurve/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTickSource struct {
	assets map[string]int
	ticks  map[int][]types.Tick
	gotArg struct {
		interval   types.Interval
		start, end time.Time
	}
}

var errNoAsset = errors.New("no such asset")

func (m *mockTickSource) GetAssetByTicker(_ context.Context, ticker string) (*types.Asset, error) {
	id, ok := m.assets[ticker]
	if !ok {
		return nil, errNoAsset
	}
	return &types.Asset{Id: id, Ticker: ticker}, nil
}

func (m *mockTickSource) GetTicks(_ context.Context, assetId int, interval types.Interval, start, end time.Time) ([]types.Tick, error) {
	m.gotArg.interval = interval
	m.gotArg.start = start
	m.gotArg.end = end
	return m.ticks[assetId], nil
}

func TestDataFeedLoad(t *testing.T) {
	src := &mockTickSource{
		assets: map[string]int{"AAPL": 7},
		ticks:  map[int][]types.Tick{7: flatTicks(1, 2, 3)},
	}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	ticks, err := NewDataFeed("AAPL", types.Day, start, end).Load(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, ticks, 3)
	assert.Equal(t, types.Day, src.gotArg.interval)
	assert.Equal(t, start, src.gotArg.start)
	assert.Equal(t, end, src.gotArg.end)

	_, err = NewDataFeed("MSFT", types.Day, start, end).Load(context.Background(), src)
	assert.ErrorIs(t, err, errNoAsset)
}
