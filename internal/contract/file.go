package contract

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"equitycurve/types"
)

// Kind identifies the record type a framed file carries.
type Kind uint16

const (
	KindTick   Kind = 1
	KindSignal Kind = 2
	KindEquity Kind = 3
)

const (
	Version    uint16 = 1
	HeaderSize        = 16
	// MaxRecords bounds the allocation a header can request.
	MaxRecords = 1 << 28
)

var magic = [4]byte{'E', 'Q', 'B', 'T'}

var (
	ErrBadMagic           = errors.New("not an equitycurve binary file")
	ErrUnsupportedVersion = errors.New("unsupported file version")
	ErrUnknownKind        = errors.New("unknown record kind")
	ErrWrongKind          = errors.New("unexpected record kind")
	ErrTooManyRecords     = errors.New("record count exceeds limit")
)

func (k Kind) recordSize() (int, error) {
	switch k {
	case KindTick:
		return TickSize, nil
	case KindSignal:
		return SignalSize, nil
	case KindEquity:
		return EquitySize, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownKind, k)
}

func (k Kind) String() string {
	switch k {
	case KindTick:
		return "tick"
	case KindSignal:
		return "signal"
	case KindEquity:
		return "equity"
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}

// WriteFile frames payload with a header:
//
//	magic "EQBT" | uint16 version | uint16 kind | uint64 record count
func WriteFile(w io.Writer, kind Kind, payload []byte) error {
	size, err := kind.recordSize()
	if err != nil {
		return err
	}
	if len(payload)%size != 0 {
		return fmt.Errorf("%w: %d bytes of %s records", ErrBufferSize, len(payload), kind)
	}

	var header [HeaderSize]byte
	copy(header[0:4], magic[:])
	le.PutUint16(header[4:], Version)
	le.PutUint16(header[6:], uint16(kind))
	le.PutUint64(header[8:], uint64(len(payload)/size))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// ReadFile reads one framed file and returns its kind, record count and payload.
func ReadFile(r io.Reader) (Kind, int, []byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, 0, nil, fmt.Errorf("read header: %w", err)
	}
	if !bytes.Equal(header[0:4], magic[:]) {
		return 0, 0, nil, ErrBadMagic
	}
	if v := le.Uint16(header[4:]); v != Version {
		return 0, 0, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	kind := Kind(le.Uint16(header[6:]))
	size, err := kind.recordSize()
	if err != nil {
		return 0, 0, nil, err
	}
	count := le.Uint64(header[8:])
	if count > MaxRecords {
		return 0, 0, nil, fmt.Errorf("%w: %d", ErrTooManyRecords, count)
	}

	// The buffer grows with the bytes actually present, not with the header's claim.
	want := int64(count) * int64(size)
	payload, err := io.ReadAll(io.LimitReader(r, want))
	if err != nil {
		return 0, 0, nil, fmt.Errorf("read %d %s records: %w", count, kind, err)
	}
	if int64(len(payload)) != want {
		return 0, 0, nil, fmt.Errorf("read %d %s records: %w", count, kind, io.ErrUnexpectedEOF)
	}
	return kind, int(count), payload, nil
}

func readKind(r io.Reader, want Kind) ([]byte, error) {
	kind, _, payload, err := ReadFile(r)
	if err != nil {
		return nil, err
	}
	if kind != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongKind, kind, want)
	}
	return payload, nil
}

func WriteTicksFile(w io.Writer, ticks []types.Tick) error {
	return WriteFile(w, KindTick, EncodeTicks(ticks))
}

func ReadTicksFile(r io.Reader) ([]types.Tick, error) {
	payload, err := readKind(r, KindTick)
	if err != nil {
		return nil, err
	}
	return DecodeTicks(payload)
}

func WriteSignalsFile(w io.Writer, signals []types.Signal) error {
	return WriteFile(w, KindSignal, EncodeSignals(signals))
}

func ReadSignalsFile(r io.Reader) ([]types.Signal, error) {
	payload, err := readKind(r, KindSignal)
	if err != nil {
		return nil, err
	}
	return DecodeSignals(payload)
}

func WriteEquityFile(w io.Writer, values []float64) error {
	return WriteFile(w, KindEquity, EncodeEquity(values))
}

func ReadEquityFile(r io.Reader) ([]float64, error) {
	payload, err := readKind(r, KindEquity)
	if err != nil {
		return nil, err
	}
	return DecodeEquity(payload)
}
