package main

import (
	"context"
	"fmt"
	"os"

	"equitycurve/internal/config"
	"equitycurve/internal/contract"
	"equitycurve/internal/engine"
	"equitycurve/internal/repository"
	"equitycurve/internal/store"
	"equitycurve/types"
)

// loadTicks reads the tick sequence described by the data section.
func loadTicks(ctx context.Context, d config.Data) ([]types.Tick, error) {
	switch d.Source {
	case config.SourceCSV:
		f, err := os.Open(d.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return store.ReadTicksCSV(f)

	case config.SourceParquet:
		return store.ReadTicksFile(d.Path)

	case config.SourceBinary:
		f, err := os.Open(d.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return contract.ReadTicksFile(f)

	case config.SourceStore:
		interval, err := types.ParseInterval(d.Interval)
		if err != nil {
			return nil, err
		}
		return store.NewParquetStore(d.DataDir).ReadTicks(ctx, d.Ticker, interval)

	case config.SourcePostgres:
		interval, err := types.ParseInterval(d.Interval)
		if err != nil {
			return nil, err
		}
		start, end, err := d.Range()
		if err != nil {
			return nil, err
		}
		db, err := repository.NewDatabase(ctx, d.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		defer db.Close()
		return engine.NewDataFeed(d.Ticker, interval, start, end).Load(ctx, db)
	}
	return nil, fmt.Errorf("%w: data.source %q", config.ErrInvalidConfig, d.Source)
}

// sourceName labels a run with where its ticks came from.
func sourceName(d config.Data) string {
	switch d.Source {
	case config.SourceStore, config.SourcePostgres:
		return fmt.Sprintf("%s:%s/%s", d.Source, d.Ticker, d.Interval)
	}
	return fmt.Sprintf("%s:%s", d.Source, d.Path)
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
