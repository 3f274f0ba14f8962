package engine

import (
	"errors"
	"math"
	"testing"

	"equitycurve/types"
)

func TestValidate(t *testing.T) {
	good := func() []types.Tick { return flatTicks(100, 101, 102) }
	tests := []struct {
		name      string
		ticks     func() []types.Tick
		signals   []types.Signal
		wantErr   error
		wantIndex int
	}{
		{"valid", good, signals(B, H, S), nil, 0},
		{"empty", func() []types.Tick { return nil }, nil, nil, 0},
		{"signals shorter", good, signals(B, H), ErrLengthMismatch, -1},
		{"signals longer", good, signals(B, H, S, H), ErrLengthMismatch, -1},
		{"repeated timestamp", func() []types.Tick {
			ts := good()
			ts[2].Timestamp = ts[1].Timestamp
			return ts
		}, signals(H, H, H), ErrNonMonotonicTime, 2},
		{"decreasing timestamp", func() []types.Tick {
			ts := good()
			ts[1].Timestamp = ts[0].Timestamp - 1
			return ts
		}, signals(H, H, H), ErrNonMonotonicTime, 1},
		{"NaN close", func() []types.Tick {
			ts := good()
			ts[1].Close = math.NaN()
			return ts
		}, signals(H, H, H), ErrInvalidPrice, 1},
		{"infinite high", func() []types.Tick {
			ts := good()
			ts[0].High = math.Inf(1)
			return ts
		}, signals(H, H, H), ErrInvalidPrice, 0},
		{"negative prices", func() []types.Tick {
			ts := good()
			ts[2] = types.Tick{Timestamp: ts[2].Timestamp, Open: -1, High: -1, Low: -1, Close: -1}
			return ts
		}, signals(H, H, H), ErrInvalidPrice, 2},
		{"low above close", func() []types.Tick {
			ts := good()
			ts[1].Low = 105
			ts[1].High = 110
			return ts
		}, signals(H, H, H), ErrInvalidPrice, 1},
		{"high below open", func() []types.Tick {
			ts := good()
			ts[1].Open = 103
			return ts
		}, signals(H, H, H), ErrInvalidPrice, 1},
		{"negative volume", func() []types.Tick {
			ts := good()
			ts[2].Volume = -5
			return ts
		}, signals(H, H, H), ErrInvalidVolume, 2},
		{"signal out of range", good, []types.Signal{H, 2, H}, ErrInvalidSignal, 1},
		{"signal checked before price", func() []types.Tick {
			ts := good()
			ts[0].Close = math.NaN()
			return ts
		}, []types.Signal{-3, H, H}, ErrInvalidSignal, 0},
		{"earliest index wins", func() []types.Tick {
			ts := good()
			ts[1].Volume = -1
			ts[2].Close = math.NaN()
			return ts
		}, signals(H, H, H), ErrInvalidVolume, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticks := tt.ticks()
			err := Validate(ticks, tt.signals)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error %T is not a *ValidationError", err)
			}
			if verr.Index != tt.wantIndex {
				t.Errorf("Validate() index = %d, want %d", verr.Index, tt.wantIndex)
			}
		})
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	ticks := flatTicks(100, 101, 102)
	ticks[1].Timestamp = ticks[0].Timestamp
	sigs := signals(B, H, S)
	wantTicks := append([]types.Tick(nil), ticks...)
	wantSigs := append([]types.Signal(nil), sigs...)

	_ = Validate(ticks, sigs)

	for i := range ticks {
		if ticks[i] != wantTicks[i] || sigs[i] != wantSigs[i] {
			t.Fatalf("Validate() mutated input at %d", i)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Kind: ErrNonMonotonicTime, Index: 3, Msg: "timestamp 5 follows 5"}
	want := "tick timestamps are not strictly increasing at index 3: timestamp 5 follows 5"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &ValidationError{Kind: ErrLengthMismatch, Index: -1, Msg: "3 ticks, 2 signals"}
	want = "tick and signal sequences differ in length: 3 ticks, 2 signals"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
