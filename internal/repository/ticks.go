package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"equitycurve/types"

	"github.com/jackc/pgx/v5"
)

var bucketToInterval = map[types.Interval]string{
	types.OneMinute:      "1 minute",
	types.FiveMinutes:    "5 minutes",
	types.FifteenMinutes: "15 minutes",
	types.ThirtyMinutes:  "30 minutes",
	types.Hour:           "1 hour",
	types.FourHours:      "4 hours",
	types.Day:            "1 day",
	types.Week:           "1 week",
}

// GetTicks loads the ticks of an asset in [start, end), aggregated to interval.
func (db *Database) GetTicks(ctx context.Context, assetId int, interval types.Interval, start, end time.Time) ([]types.Tick, error) {
	bucket, ok := bucketToInterval[interval]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrIntervalNotSupported, interval)
	}
	args := aggregatesParams{
		TimeBucket: bucket,
		AssetID:    int32(assetId),
		Starttime:  start,
		Endtime:    end,
	}
	rows, err := db.ticks.GetAggregates(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoTicks
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoTicks
	}
	return convertTicks(rows)
}

func convertTicks(rows []aggregateRow) ([]types.Tick, error) {
	ticks := make([]types.Tick, 0, len(rows))
	for _, row := range rows {
		// Fractional volume (crypto) is truncated to whole units.
		volume := row.Volume.Truncate(0)
		if volume.IsNegative() || volume.IntPart() > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %s at %s", ErrVolumeOverflow, row.Volume, row.Bucket.Format(time.RFC3339))
		}
		ticks = append(ticks, types.Tick{
			Timestamp: row.Bucket.Unix(),
			Open:      row.Open.InexactFloat64(),
			High:      row.High.InexactFloat64(),
			Low:       row.Low.InexactFloat64(),
			Close:     row.Close.InexactFloat64(),
			Volume:    int32(volume.IntPart()),
		})
	}
	return ticks, nil
}
