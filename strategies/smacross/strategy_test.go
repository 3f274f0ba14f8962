package smacross

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equitycurve/types"
)

func ticksFromCloses(closes ...float64) []types.Tick {
	ticks := make([]types.Tick, len(closes))
	for i, c := range closes {
		ticks[i] = types.Tick{Timestamp: int64(i + 1), Open: c, High: c, Low: c, Close: c}
	}
	return ticks
}

func TestRollingMean(t *testing.T) {
	got := rollingMean([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, []float64{1, 1.5, 2, 3, 4}, got)
}

func TestSignals(t *testing.T) {
	s, err := New(2, 4)
	require.NoError(t, err)

	// short > long from index 2 onward while rising, flips when prices fall.
	ticks := ticksFromCloses(10, 10, 12, 14, 16, 10, 6, 4, 8, 14, 20)
	got := s.Signals(ticks)
	require.Len(t, got, len(ticks))

	want := types.Holds(len(ticks))
	want[2] = types.SignalBuy
	want[5] = types.SignalSell
	want[9] = types.SignalBuy
	assert.Equal(t, want, got)
}

func TestSignalsWarmup(t *testing.T) {
	s, err := New(3, 5)
	require.NoError(t, err)

	// Rising from the first tick, but the regime is not evaluated before index 3.
	got := s.Signals(ticksFromCloses(1, 2, 3, 4, 5))
	assert.Equal(t, []types.Signal{0, 0, 0, 1, 0}, got)
}

func TestSignalsNoLookAhead(t *testing.T) {
	s, err := New(2, 4)
	require.NoError(t, err)
	ticks := ticksFromCloses(10, 10, 12, 14, 16, 10, 6, 4, 8, 14, 20)
	full := s.Signals(ticks)
	for k := 1; k <= len(ticks); k++ {
		assert.Equal(t, full[:k], s.Signals(ticks[:k]), "prefix %d", k)
	}
}

func TestNew(t *testing.T) {
	_, err := New(5, 5)
	assert.Error(t, err)
	_, err = New(-1, 5)
	assert.Error(t, err)

	s, err := Factory(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultShortWindow, s.(*Strategy).short)
	assert.Equal(t, DefaultLongWindow, s.(*Strategy).long)
}
