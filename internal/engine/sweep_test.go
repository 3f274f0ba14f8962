package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"equitycurve/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSignals replays the same signals regardless of ticks.
type fixedSignals struct {
	name    string
	signals []types.Signal
}

func (f fixedSignals) Name() string { return f.name }

func (f fixedSignals) Signals([]types.Tick) []types.Signal {
	return append([]types.Signal(nil), f.signals...)
}

type countingRecorder struct {
	mu   sync.Mutex
	jobs map[string]error
}

func (r *countingRecorder) ObserveJob(res JobResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.jobs == nil {
		r.jobs = make(map[string]error)
	}
	r.jobs[res.Job] = res.Err
}

func sweepJobs() []Job {
	ticks := flatTicks(100, 110, 105, 120)
	cfg := NewAccountConfig(decimal.NewFromInt(1000), WholeUnits)
	return []Job{
		{Name: "scenario", Ticks: ticks, Strategy: fixedSignals{"bhhs", signals(B, H, H, S)}, Config: cfg},
		{Name: "short", Ticks: ticks, Strategy: fixedSignals{"broken", signals(B, H)}, Config: cfg},
		{Name: "hold", Ticks: ticks, Strategy: fixedSignals{"hold", signals(H, H, H, H)}, Config: cfg},
		{Name: "nil", Ticks: ticks, Config: cfg},
	}
}

func TestSweep(t *testing.T) {
	rec := &countingRecorder{}
	results, err := Sweep(context.Background(), sweepJobs(), SweepOptions{Parallelism: 2, Recorder: rec})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "scenario", results[0].Job)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []float64{1000, 1100, 1050, 1200}, results[0].Result.Equity.Values())
	assert.Equal(t, "bhhs", results[0].Strategy)

	assert.ErrorIs(t, results[1].Err, ErrLengthMismatch)
	assert.Nil(t, results[1].Result)

	require.NoError(t, results[2].Err)
	assert.Equal(t, []float64{1000, 1000, 1000, 1000}, results[2].Result.Equity.Values())

	assert.ErrorIs(t, results[3].Err, ErrNoStrategy)

	assert.Len(t, rec.jobs, 4)
}

func TestSweepFailFast(t *testing.T) {
	jobs := sweepJobs()
	jobs[0], jobs[1] = jobs[1], jobs[0]

	results, err := Sweep(context.Background(), jobs, SweepOptions{Parallelism: 1, FailFast: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	require.Len(t, results, 4)
	for _, r := range results[1:] {
		assert.True(t, errors.Is(r.Err, context.Canceled), "job %s: %v", r.Job, r.Err)
	}
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Sweep(ctx, sweepJobs(), SweepOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestSweepJobsAreIsolated(t *testing.T) {
	ticks := flatTicks(100, 200, 50, 100)
	cfg := NewAccountConfig(decimal.NewFromInt(1000), WholeUnits)
	var jobs []Job
	for i := 0; i < 32; i++ {
		jobs = append(jobs, Job{Name: "same", Ticks: ticks, Strategy: fixedSignals{"bs", signals(B, S, B, H)}, Config: cfg})
	}

	results, err := Sweep(context.Background(), jobs, SweepOptions{Parallelism: 8})
	require.NoError(t, err)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, []float64{1000, 2000, 2000, 4000}, r.Result.Equity.Values())
	}
}
