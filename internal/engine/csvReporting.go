package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"equitycurve/types"
)

var ErrMisalignedReport = errors.New("ticks, signals and equity series differ in length")

// WriteEquityCSVFile writes the equity curve to a CSV file at the given path.
func WriteEquityCSVFile(path string, ticks []types.Tick, signals []types.Signal, equity *EquitySeries) error {
	return createFile(path, func(w io.Writer) error {
		return WriteEquityCSV(w, ticks, signals, equity)
	})
}

// WriteEquityCSV writes one row per tick: its time, close, signal and the
// account equity after that tick.
func WriteEquityCSV(w io.Writer, ticks []types.Tick, signals []types.Signal, equity *EquitySeries) error {
	if len(ticks) != equity.Len() || len(signals) != equity.Len() {
		return ErrMisalignedReport
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"index",
		"timestamp",
		"time", // RFC3339
		"close",
		"signal",
		"equity",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, tick := range ticks {
		record := []string{
			strconv.Itoa(i),
			strconv.FormatInt(tick.Timestamp, 10),
			tick.Time().Format(time.RFC3339),
			strconv.FormatFloat(tick.Close, 'f', -1, 64),
			signals[i].String(),
			strconv.FormatFloat(equity.At(i), 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteTradesCSVFile writes trades to a CSV file at the given path.
func WriteTradesCSVFile(path string, trades []types.Trade) error {
	return createFile(path, func(w io.Writer) error {
		return WriteTradesCSV(w, trades)
	})
}

// createFile runs write against a new file at path. The close error is
// returned so a failed flush is not lost.
func createFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteTradesCSV writes trades to any io.Writer as CSV.
func WriteTradesCSV(w io.Writer, trades []types.Trade) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"trade_id",
		"status", // "closed" or "open"
		"entry_index",
		"exit_index",
		"entry_time", // RFC3339
		"exit_time",
		"quantity",
		"entry_price",
		"exit_price",
		"pnl",
		"return",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range trades {
		if err := writeTradeRow(cw, t); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeTradeRow(cw *csv.Writer, t types.Trade) error {
	status := "closed"
	if t.Open {
		status = "open"
	}
	record := []string{
		strconv.Itoa(t.ID),
		status,
		strconv.Itoa(t.EntryIndex),
		strconv.Itoa(t.ExitIndex),
		time.Unix(t.EntryTime, 0).UTC().Format(time.RFC3339),
		time.Unix(t.ExitTime, 0).UTC().Format(time.RFC3339),
		t.Quantity.String(),
		t.EntryPrice.String(),
		t.ExitPrice.String(),
		t.PnL().String(),
		t.Return().StringFixed(4),
	}

	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
