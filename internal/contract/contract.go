// Package contract implements the fixed binary layout ticks, signals and
// equity values use when they cross a process or file boundary.
//
// All values are little-endian and records are packed with no padding:
//
//	tick   44 bytes  int64 timestamp | float64 open | high | low | close | int32 volume
//	signal  4 bytes  int32 in {-1, 0, 1}
//	equity  8 bytes  float64
package contract

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"equitycurve/internal/engine"
	"equitycurve/types"
)

const (
	TickSize   = 44
	SignalSize = 4
	EquitySize = 8
)

var (
	ErrBufferSize = errors.New("buffer size does not match record count")
	// ErrInvalidSignal is the engine's sentinel so callers can match either layer.
	ErrInvalidSignal = engine.ErrInvalidSignal
)

var le = binary.LittleEndian

// PutTick encodes t into b[:TickSize].
func PutTick(b []byte, t types.Tick) {
	_ = b[TickSize-1]
	le.PutUint64(b[0:], uint64(t.Timestamp))
	le.PutUint64(b[8:], math.Float64bits(t.Open))
	le.PutUint64(b[16:], math.Float64bits(t.High))
	le.PutUint64(b[24:], math.Float64bits(t.Low))
	le.PutUint64(b[32:], math.Float64bits(t.Close))
	le.PutUint32(b[40:], uint32(t.Volume))
}

// ReadTick decodes a tick from b[:TickSize].
func ReadTick(b []byte) types.Tick {
	_ = b[TickSize-1]
	return types.Tick{
		Timestamp: int64(le.Uint64(b[0:])),
		Open:      math.Float64frombits(le.Uint64(b[8:])),
		High:      math.Float64frombits(le.Uint64(b[16:])),
		Low:       math.Float64frombits(le.Uint64(b[24:])),
		Close:     math.Float64frombits(le.Uint64(b[32:])),
		Volume:    int32(le.Uint32(b[40:])),
	}
}

func EncodeTicks(ticks []types.Tick) []byte {
	buf := make([]byte, len(ticks)*TickSize)
	for i, t := range ticks {
		PutTick(buf[i*TickSize:], t)
	}
	return buf
}

func DecodeTicks(buf []byte) ([]types.Tick, error) {
	if len(buf)%TickSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrBufferSize, len(buf), TickSize)
	}
	ticks := make([]types.Tick, len(buf)/TickSize)
	for i := range ticks {
		ticks[i] = ReadTick(buf[i*TickSize:])
	}
	return ticks, nil
}

func EncodeSignals(signals []types.Signal) []byte {
	buf := make([]byte, len(signals)*SignalSize)
	for i, s := range signals {
		le.PutUint32(buf[i*SignalSize:], uint32(int32(s)))
	}
	return buf
}

// DecodeSignals rejects any value outside {-1, 0, 1}.
func DecodeSignals(buf []byte) ([]types.Signal, error) {
	signals, err := decodeSignals(buf)
	if err != nil {
		return nil, err
	}
	for i, s := range signals {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: %d at index %d", ErrInvalidSignal, int32(s), i)
		}
	}
	return signals, nil
}

func decodeSignals(buf []byte) ([]types.Signal, error) {
	if len(buf)%SignalSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrBufferSize, len(buf), SignalSize)
	}
	signals := make([]types.Signal, len(buf)/SignalSize)
	for i := range signals {
		signals[i] = types.Signal(int32(le.Uint32(buf[i*SignalSize:])))
	}
	return signals, nil
}

func EncodeEquity(values []float64) []byte {
	buf := make([]byte, len(values)*EquitySize)
	putEquity(buf, values)
	return buf
}

func DecodeEquity(buf []byte) ([]float64, error) {
	if len(buf)%EquitySize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrBufferSize, len(buf), EquitySize)
	}
	values := make([]float64, len(buf)/EquitySize)
	for i := range values {
		values[i] = math.Float64frombits(le.Uint64(buf[i*EquitySize:]))
	}
	return values, nil
}

func putEquity(buf []byte, values []float64) {
	for i, v := range values {
		le.PutUint64(buf[i*EquitySize:], math.Float64bits(v))
	}
}
