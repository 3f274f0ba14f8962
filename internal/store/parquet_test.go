package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equitycurve/internal/engine"
	"equitycurve/types"
)

func sampleTicks() []types.Tick {
	return []types.Tick{
		{Timestamp: 100, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 1000},
		{Timestamp: 160, Open: 10.5, High: 12, Low: 10, Close: 11.75, Volume: 1500},
		{Timestamp: 220, Open: 11.75, High: 11.9, Low: 11, Close: 11.1, Volume: 800},
	}
}

func TestParquetStore_Ticks(t *testing.T) {
	ctx := context.Background()
	s := NewParquetStore(t.TempDir())

	require.NoError(t, s.WriteTicks(ctx, "aapl", types.Day, sampleTicks()))

	got, err := s.ReadTicks(ctx, "AAPL", types.Day)
	require.NoError(t, err)
	assert.Equal(t, sampleTicks(), got)

	// Overlapping write replaces by timestamp and keeps order.
	update := []types.Tick{
		{Timestamp: 160, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Timestamp: 280, Open: 2, High: 2, Low: 2, Close: 2, Volume: 2},
	}
	require.NoError(t, s.WriteTicks(ctx, "AAPL", types.Day, update))

	got, err = s.ReadTicks(ctx, "AAPL", types.Day)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []int64{100, 160, 220, 280}, []int64{got[0].Timestamp, got[1].Timestamp, got[2].Timestamp, got[3].Timestamp})
	assert.Equal(t, 1.0, got[1].Close)
}

func TestParquetStore_ReadTicksMissing(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	_, err := s.ReadTicks(context.Background(), "MSFT", types.Hour)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestParquetStore_Equity(t *testing.T) {
	ctx := context.Background()
	s := NewParquetStore(t.TempDir())
	series := engine.NewEquitySeries([]int64{1, 2, 3}, []float64{1000, 1100, 1050})

	require.NoError(t, s.WriteEquity(ctx, "run-1", series))

	got, err := s.ReadEquity(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, series.Points(), got.Points())

	_, err = s.ReadEquity(ctx, "run-2")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTicksFile_PreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.parquet")
	ticks := sampleTicks()
	ticks[0], ticks[2] = ticks[2], ticks[0]

	require.NoError(t, WriteTicksFile(path, ticks))
	got, err := ReadTicksFile(path)
	require.NoError(t, err)
	assert.Equal(t, ticks, got)
}
