package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equitycurve/internal/engine"
)

func newTestRunStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := NewRunStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestRunStore(t)
	series := engine.NewEquitySeries([]int64{10, 20, 30, 40}, []float64{1000, 1100, 1050, 1200})

	id, err := s.SaveRun(ctx, RunRecord{
		Name:        "scenario",
		Strategy:    "buy-and-hold",
		Source:      "ticks.csv",
		InitialCash: decimal.NewFromInt(1000),
		FinalEquity: 1200,
		Ticks:       4,
		Trades:      1,
	}, series)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	rec, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "scenario", rec.Name)
	assert.Equal(t, "buy-and-hold", rec.Strategy)
	assert.True(t, rec.InitialCash.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 1200.0, rec.FinalEquity)
	assert.Equal(t, 4, rec.Ticks)

	got, err := s.LoadEquity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, series.Points(), got.Points())
}

func TestRunStore_ListRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestRunStore(t)
	base := time.Unix(1_700_000_000, 0)
	empty := engine.NewEquitySeries(nil, nil)

	for i, name := range []string{"a", "b", "c"} {
		_, err := s.SaveRun(ctx, RunRecord{
			Name:        name,
			Strategy:    "hold",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			InitialCash: decimal.NewFromInt(10000),
		}, empty)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].Name)
	assert.Equal(t, "b", runs[1].Name)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestRunStore(t)

	_, err := s.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.LoadEquity(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := newTestRunStore(t)
	empty := engine.NewEquitySeries(nil, nil)

	_, err := s.SaveRun(ctx, RunRecord{ID: "fixed", InitialCash: decimal.Zero}, empty)
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, RunRecord{ID: "fixed", InitialCash: decimal.Zero}, empty)
	assert.Error(t, err)
}
