package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equitycurve/types"
)

func TestReadTicksCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []types.Tick
		wantErr error
	}{
		{
			name: "yfinance export",
			input: "Date,Open,High,Low,Close,Adj Close,Volume\n" +
				"2020-01-02,74.06,75.15,73.80,75.09,73.06,135480400\n" +
				"2020-01-03,74.29,75.14,74.13,74.36,72.35,146322800\n",
			want: []types.Tick{
				{Timestamp: 1577923200, Open: 74.06, High: 75.15, Low: 73.80, Close: 75.09, Volume: 135480400},
				{Timestamp: 1578009600, Open: 74.29, High: 75.14, Low: 74.13, Close: 74.36, Volume: 146322800},
			},
		},
		{
			name:  "unix timestamps, reordered columns, float volume",
			input: "close,volume,timestamp,open,high,low\n10,5.0,60,9,11,8\n",
			want:  []types.Tick{{Timestamp: 60, Open: 9, High: 11, Low: 8, Close: 10, Volume: 5}},
		},
		{
			name:  "intraday with offset",
			input: "Datetime,Open,High,Low,Close,Volume\n2020-01-02 09:30:00-05:00,1,1,1,1,1\n",
			want:  []types.Tick{{Timestamp: 1577975400, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}},
		},
		{
			name:  "header only",
			input: "Date,Open,High,Low,Close,Volume\n",
			want:  nil,
		},
		{name: "empty input", input: "", wantErr: ErrCSVHeader},
		{name: "missing volume", input: "Date,Open,High,Low,Close\n", wantErr: ErrCSVHeader},
		{name: "bad price", input: "Date,Open,High,Low,Close,Volume\n2020-01-02,x,1,1,1,1\n", wantErr: ErrCSVRecord},
		{name: "bad date", input: "Date,Open,High,Low,Close,Volume\nyesterday,1,1,1,1,1\n", wantErr: ErrCSVRecord},
		{name: "volume overflow", input: "Date,Open,High,Low,Close,Volume\n2020-01-02,1,1,1,1,3000000000\n", wantErr: ErrCSVRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadTicksCSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadSignalsCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []types.Signal
		wantErr error
	}{
		{
			name:  "equity csv output",
			input: "index,timestamp,time,close,signal,equity\n0,1,x,100,BUY,1000\n1,2,x,110,HOLD,1100\n2,3,x,105,SELL,1050\n",
			want:  []types.Signal{types.SignalBuy, types.SignalHold, types.SignalSell},
		},
		{
			name:  "numeric",
			input: "Signal\n1\n0\n-1\n",
			want:  []types.Signal{types.SignalBuy, types.SignalHold, types.SignalSell},
		},
		{name: "no signal column", input: "date,close\n2020-01-02,1\n", wantErr: ErrCSVHeader},
		{name: "bad value", input: "signal\nBUY\n2\n", wantErr: ErrCSVRecord},
		{name: "empty", input: "", wantErr: ErrCSVHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadSignalsCSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
