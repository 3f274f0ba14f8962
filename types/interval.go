package types

import (
	"fmt"
	"time"
)

// Interval is the spacing between consecutive ticks of a sequence.
type Interval string

const (
	OneMinute      Interval = "1"
	FiveMinutes    Interval = "5"
	FifteenMinutes Interval = "15"
	ThirtyMinutes  Interval = "30"
	Hour           Interval = "60"
	FourHours      Interval = "240"
	Day            Interval = "D"
	Week           Interval = "W"
)

var intervalDurations = map[Interval]time.Duration{
	OneMinute:      time.Minute,
	FiveMinutes:    time.Minute * 5,
	FifteenMinutes: time.Minute * 15,
	ThirtyMinutes:  time.Minute * 30,
	Hour:           time.Hour,
	FourHours:      time.Hour * 4,
	Day:            time.Hour * 24,
	Week:           time.Hour * 24 * 7,
}

// Duration returns the nominal length of the interval, or 0 if unknown.
func (i Interval) Duration() time.Duration {
	return intervalDurations[i]
}

func ParseInterval(s string) (Interval, error) {
	i := Interval(s)
	if _, ok := intervalDurations[i]; !ok {
		return "", fmt.Errorf("unknown interval %q", s)
	}
	return i, nil
}
