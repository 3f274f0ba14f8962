package contract

import (
	"errors"
	"fmt"
	"math"

	"equitycurve/internal/engine"
)

var ErrNilEngine = errors.New("nil engine")

// Perform is the raw-buffer entry point: it reads n packed ticks and n
// signals and writes n equity values into out. The caller owns all three
// buffers; nothing is retained after the call and out is written only once
// the input has been validated.
func Perform(e *engine.Engine, tickBuf []byte, n int, signalBuf []byte, out []byte) error {
	if e == nil {
		return ErrNilEngine
	}
	if n < 0 {
		return fmt.Errorf("%w: negative count %d", ErrBufferSize, n)
	}
	if n > math.MaxInt/TickSize {
		return fmt.Errorf("%w: count %d overflows buffer size", ErrBufferSize, n)
	}
	if len(tickBuf) != n*TickSize {
		return fmt.Errorf("%w: tick buffer is %d bytes, want %d", ErrBufferSize, len(tickBuf), n*TickSize)
	}
	if len(signalBuf) != n*SignalSize {
		return fmt.Errorf("%w: signal buffer is %d bytes, want %d", ErrBufferSize, len(signalBuf), n*SignalSize)
	}
	if len(out) < n*EquitySize {
		return fmt.Errorf("%w: output buffer is %d bytes, want at least %d", ErrBufferSize, len(out), n*EquitySize)
	}

	ticks, err := DecodeTicks(tickBuf)
	if err != nil {
		return err
	}
	signals, err := decodeSignals(signalBuf)
	if err != nil {
		return err
	}

	values := make([]float64, n)
	if err := e.RunInto(ticks, signals, values); err != nil {
		return err
	}
	putEquity(out, values)
	return nil
}
