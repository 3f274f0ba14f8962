package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"equitycurve/internal/engine"
	"equitycurve/types"
)

var ErrNoData = errors.New("no data in store")

// ParquetStore keeps tick sequences and equity curves as Parquet files
// under DataDir:
//
//	<DataDir>/ticks/<TICKER>/<interval>.parquet
//	<DataDir>/equity/<run id>.parquet
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// TickRecord is the Parquet schema for tick data.
type TickRecord struct {
	Timestamp int64   `parquet:"timestamp"` // Unix seconds
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int32   `parquet:"volume"`
}

// EquityRecord is the Parquet schema for one point of an equity curve.
type EquityRecord struct {
	Index     int64   `parquet:"index"`
	Timestamp int64   `parquet:"timestamp"` // Unix seconds
	Equity    float64 `parquet:"equity"`
}

// WriteTicks merges ticks into the file for ticker and interval. Existing
// ticks with the same timestamp are replaced.
func (s *ParquetStore) WriteTicks(_ context.Context, ticker string, interval types.Interval, ticks []types.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	path := s.tickPath(ticker, interval)

	existing, err := readParquetFile[TickRecord](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading ticks for %s/%s: %w", ticker, interval, err)
	}
	merged := mergeTickRecords(existing, toTickRecords(ticks))

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing ticks for %s/%s: %w", ticker, interval, err)
	}
	return nil
}

// ReadTicks returns every stored tick of ticker at interval, oldest first.
func (s *ParquetStore) ReadTicks(_ context.Context, ticker string, interval types.Interval) ([]types.Tick, error) {
	records, err := readParquetFile[TickRecord](s.tickPath(ticker, interval))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: ticks for %s/%s", ErrNoData, ticker, interval)
		}
		return nil, err
	}
	return fromTickRecords(records), nil
}

// WriteEquity stores the equity curve of a run, replacing any previous one.
func (s *ParquetStore) WriteEquity(_ context.Context, runID string, series *engine.EquitySeries) error {
	records := make([]EquityRecord, series.Len())
	for i := range records {
		records[i] = EquityRecord{
			Index:     int64(i),
			Timestamp: series.Timestamp(i),
			Equity:    series.At(i),
		}
	}
	if err := writeParquetFile(s.equityPath(runID), records); err != nil {
		return fmt.Errorf("writing equity for run %s: %w", runID, err)
	}
	return nil
}

// ReadEquity loads the equity curve of a run.
func (s *ParquetStore) ReadEquity(_ context.Context, runID string) (*engine.EquitySeries, error) {
	records, err := readParquetFile[EquityRecord](s.equityPath(runID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: equity for run %s", ErrNoData, runID)
		}
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Index < records[j].Index
	})
	timestamps := make([]int64, len(records))
	values := make([]float64, len(records))
	for i, r := range records {
		timestamps[i] = r.Timestamp
		values[i] = r.Equity
	}
	return engine.NewEquitySeries(timestamps, values), nil
}

// WriteTicksFile writes ticks, in their given order, to a standalone
// Parquet file.
func WriteTicksFile(path string, ticks []types.Tick) error {
	return writeParquetFile(path, toTickRecords(ticks))
}

// ReadTicksFile reads a Parquet file written by WriteTicksFile or WriteTicks.
// Row order is preserved so that a malformed sequence still reaches
// validation as-is.
func ReadTicksFile(path string) ([]types.Tick, error) {
	records, err := readParquetFile[TickRecord](path)
	if err != nil {
		return nil, err
	}
	return fromTickRecords(records), nil
}

func (s *ParquetStore) tickPath(ticker string, interval types.Interval) string {
	return filepath.Join(s.DataDir, "ticks", strings.ToUpper(ticker), string(interval)+".parquet")
}

func (s *ParquetStore) equityPath(runID string) string {
	return filepath.Join(s.DataDir, "equity", runID+".parquet")
}

func toTickRecords(ticks []types.Tick) []TickRecord {
	records := make([]TickRecord, len(ticks))
	for i, t := range ticks {
		records[i] = TickRecord{
			Timestamp: t.Timestamp,
			Open:      t.Open,
			High:      t.High,
			Low:       t.Low,
			Close:     t.Close,
			Volume:    t.Volume,
		}
	}
	return records
}

func fromTickRecords(records []TickRecord) []types.Tick {
	ticks := make([]types.Tick, len(records))
	for i, r := range records {
		ticks[i] = types.Tick{
			Timestamp: r.Timestamp,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		}
	}
	return ticks
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeTickRecords deduplicates tick records by timestamp, preferring
// incoming records over existing ones.
func mergeTickRecords(existing, incoming []TickRecord) []TickRecord {
	seen := make(map[int64]TickRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]TickRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
