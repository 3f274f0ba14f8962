package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEquityCSV(t *testing.T) {
	e := mustEngine(1000, WholeUnits)
	ticks := flatTicks(100, 110, 105, 120)
	sigs := signals(B, H, H, S)
	res, err := e.Run(ticks, sigs)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteEquityCSV(&buf, ticks, sigs, res.Equity))

	want := strings.Join([]string{
		"index,timestamp,time,close,signal,equity",
		"0,1577836800,2020-01-01T00:00:00Z,100,BUY,1000",
		"1,1577923200,2020-01-02T00:00:00Z,110,HOLD,1100",
		"2,1578009600,2020-01-03T00:00:00Z,105,HOLD,1050",
		"3,1578096000,2020-01-04T00:00:00Z,120,SELL,1200",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteEquityCSVMisaligned(t *testing.T) {
	e := mustEngine(1000, WholeUnits)
	ticks := flatTicks(100, 110)
	res, err := e.Run(ticks, signals(H, H))
	require.NoError(t, err)

	err = WriteEquityCSV(&bytes.Buffer{}, ticks[:1], signals(H), res.Equity)
	assert.ErrorIs(t, err, ErrMisalignedReport)
}

func TestWriteTradesCSV(t *testing.T) {
	e := mustEngine(1000, WholeUnits)
	res, err := e.Run(flatTicks(100, 110, 105, 120, 60, 80), signals(B, H, H, S, B, H))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTradesCSV(&buf, res.Trades))

	want := strings.Join([]string{
		"trade_id,status,entry_index,exit_index,entry_time,exit_time,quantity,entry_price,exit_price,pnl,return",
		"1,closed,0,3,2020-01-01T00:00:00Z,2020-01-04T00:00:00Z,10,100,120,200,0.2000",
		"2,open,4,-1,2020-01-05T00:00:00Z,2020-01-06T00:00:00Z,20,60,80,400,0.3333",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVFiles(t *testing.T) {
	e := mustEngine(1000, WholeUnits)
	ticks := flatTicks(100, 110)
	sigs := signals(B, S)
	res, err := e.Run(ticks, sigs)
	require.NoError(t, err)

	dir := t.TempDir()
	equityPath := filepath.Join(dir, "equity.csv")
	tradesPath := filepath.Join(dir, "trades.csv")
	require.NoError(t, WriteEquityCSVFile(equityPath, ticks, sigs, res.Equity))
	require.NoError(t, WriteTradesCSVFile(tradesPath, res.Trades))

	data, err := os.ReadFile(equityPath)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))

	data, err = os.ReadFile(tradesPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,closed,0,1,")

	assert.Error(t, WriteTradesCSVFile(filepath.Join(dir, "missing", "trades.csv"), res.Trades))
}

func TestWriteEquityCSVFileReturnsWriteError(t *testing.T) {
	e := mustEngine(1000, WholeUnits)
	res, err := e.Run(flatTicks(100, 110), signals(B, S))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "equity.csv")
	err = WriteEquityCSVFile(path, flatTicks(100), signals(B), res.Equity)
	assert.ErrorIs(t, err, ErrMisalignedReport)

	// The file is still created and closed
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
