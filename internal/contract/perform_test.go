package contract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equitycurve/internal/engine"
	"equitycurve/types"
)

func scenario() ([]types.Tick, []types.Signal) {
	closes := []float64{100, 110, 105, 120}
	ticks := make([]types.Tick, len(closes))
	for i, c := range closes {
		ticks[i] = types.Tick{Timestamp: int64(i + 1), Open: c, High: c, Low: c, Close: c, Volume: 10}
	}
	return ticks, []types.Signal{types.SignalBuy, types.SignalHold, types.SignalHold, types.SignalSell}
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.NewEngine(engine.NewAccountConfig(decimal.NewFromInt(1000), engine.WholeUnits))
	require.NoError(t, err)
	return e
}

func filled(n int, b byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestPerform(t *testing.T) {
	ticks, sigs := scenario()
	out := make([]byte, len(ticks)*EquitySize)

	require.NoError(t, Perform(newEngine(t), EncodeTicks(ticks), len(ticks), EncodeSignals(sigs), out))

	got, err := DecodeEquity(out)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 1100, 1050, 1200}, got)
}

func TestPerformMatchesRun(t *testing.T) {
	ticks, sigs := scenario()
	e := newEngine(t)
	res, err := e.Run(ticks, sigs)
	require.NoError(t, err)

	out := make([]byte, len(ticks)*EquitySize)
	require.NoError(t, Perform(e, EncodeTicks(ticks), len(ticks), EncodeSignals(sigs), out))
	assert.Equal(t, EncodeEquity(res.Equity.Values()), out)
}

func TestPerformErrors(t *testing.T) {
	ticks, sigs := scenario()
	tickBuf := EncodeTicks(ticks)
	sigBuf := EncodeSignals(sigs)
	n := len(ticks)

	badTime := append([]types.Tick(nil), ticks...)
	badTime[2].Timestamp = badTime[1].Timestamp
	badSig := append([]byte(nil), sigBuf...)
	badSig[4] = 5

	tests := []struct {
		name    string
		eng     *engine.Engine
		ticks   []byte
		n       int
		signals []byte
		outLen  int
		wantErr error
	}{
		{"nil engine", nil, tickBuf, n, sigBuf, n * EquitySize, ErrNilEngine},
		{"negative count", newEngine(t), tickBuf, -1, sigBuf, n * EquitySize, ErrBufferSize},
		{"tick buffer too long", newEngine(t), tickBuf, n - 1, sigBuf[:(n-1)*SignalSize], n * EquitySize, ErrBufferSize},
		{"short signal buffer", newEngine(t), tickBuf, n, sigBuf[:(n-1)*SignalSize], n * EquitySize, ErrBufferSize},
		{"short output", newEngine(t), tickBuf, n, sigBuf, n*EquitySize - 1, ErrBufferSize},
		{"overflowing count", newEngine(t), nil, 1 << 62, nil, 0, ErrBufferSize},
		{"non-monotonic time", newEngine(t), EncodeTicks(badTime), n, sigBuf, n * EquitySize, engine.ErrNonMonotonicTime},
		{"invalid signal", newEngine(t), tickBuf, n, badSig, n * EquitySize, ErrInvalidSignal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filled(tt.outLen, 0xAB)
			err := Perform(tt.eng, tt.ticks, tt.n, tt.signals, out)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, filled(tt.outLen, 0xAB), out, "output must be untouched")
		})
	}
}

func TestPerformEmpty(t *testing.T) {
	assert.NoError(t, Perform(newEngine(t), nil, 0, nil, nil))
}
