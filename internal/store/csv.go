package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"equitycurve/types"
)

var (
	ErrCSVHeader = errors.New("csv header missing required column")
	ErrCSVRecord = errors.New("malformed csv record")
)

// Layouts accepted for the date column, tried in order after plain Unix
// seconds.
var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadTicksCSV reads ticks from a CSV with a header row naming
// Date (or Timestamp/Datetime), Open, High, Low, Close and Volume, in any
// order and case. Other columns, such as "Adj Close", are ignored.
func ReadTicksCSV(r io.Reader) ([]types.Tick, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrCSVHeader)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := tickColumns(header)
	if err != nil {
		return nil, err
	}

	var ticks []types.Tick
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCSVRecord, line, err)
		}
		tick, err := parseTickRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCSVRecord, line, err)
		}
		ticks = append(ticks, tick)
	}
	return ticks, nil
}

type tickCols struct {
	time, open, high, low, close, volume int
}

func tickColumns(header []string) (tickCols, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	find := func(names ...string) (int, error) {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrCSVHeader, names[0])
	}

	var cols tickCols
	var err error
	if cols.time, err = find("date", "timestamp", "datetime"); err != nil {
		return cols, err
	}
	if cols.open, err = find("open"); err != nil {
		return cols, err
	}
	if cols.high, err = find("high"); err != nil {
		return cols, err
	}
	if cols.low, err = find("low"); err != nil {
		return cols, err
	}
	if cols.close, err = find("close"); err != nil {
		return cols, err
	}
	if cols.volume, err = find("volume"); err != nil {
		return cols, err
	}
	return cols, nil
}

func parseTickRecord(record []string, cols tickCols) (types.Tick, error) {
	var t types.Tick
	var err error
	if t.Timestamp, err = parseCSVTime(record[cols.time]); err != nil {
		return t, err
	}
	prices := []struct {
		dst  *float64
		col  int
		name string
	}{
		{&t.Open, cols.open, "open"},
		{&t.High, cols.high, "high"},
		{&t.Low, cols.low, "low"},
		{&t.Close, cols.close, "close"},
	}
	for _, p := range prices {
		if *p.dst, err = strconv.ParseFloat(strings.TrimSpace(record[p.col]), 64); err != nil {
			return t, fmt.Errorf("%s: %w", p.name, err)
		}
	}
	// Some exports write volume as a float.
	v, err := strconv.ParseFloat(strings.TrimSpace(record[cols.volume]), 64)
	if err != nil {
		return t, fmt.Errorf("volume: %w", err)
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return t, fmt.Errorf("volume %v out of range", v)
	}
	t.Volume = int32(v)
	return t, nil
}

func parseCSVTime(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ts, nil
	}
	for _, layout := range csvTimeLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognised time %q", s)
}

// ReadSignalsCSV reads one signal per row from a CSV whose header has a
// Signal column. Values are BUY/SELL/HOLD or 1/-1/0. Row order is the tick
// order.
func ReadSignalsCSV(r io.Reader) ([]types.Signal, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrCSVHeader)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "signal") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: signal", ErrCSVHeader)
	}

	var signals []types.Signal
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCSVRecord, line, err)
		}
		if col >= len(record) {
			return nil, fmt.Errorf("%w: line %d: no signal field", ErrCSVRecord, line)
		}
		sig, err := types.ParseSignal(record[col])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCSVRecord, line, err)
		}
		signals = append(signals, sig)
	}
	return signals, nil
}
