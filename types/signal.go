package types

import (
	"fmt"
	"strings"
)

// Signal is a trade directive aligned to one tick.
type Signal int32

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

func (s Signal) Valid() bool {
	return s == SignalSell || s == SignalHold || s == SignalBuy
}

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	case SignalHold:
		return "HOLD"
	}
	return fmt.Sprintf("SIGNAL(%d)", int32(s))
}

// ParseSignal accepts BUY/SELL/HOLD (any case) or the numeric forms 1/-1/0.
func ParseSignal(s string) (Signal, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "1", "+1":
		return SignalBuy, nil
	case "SELL", "-1":
		return SignalSell, nil
	case "HOLD", "0", "":
		return SignalHold, nil
	}
	return SignalHold, fmt.Errorf("unknown signal %q", s)
}

// Holds returns n Hold signals.
func Holds(n int) []Signal {
	return make([]Signal, n)
}
