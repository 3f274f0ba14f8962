package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"equitycurve/internal/engine"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

var ErrRunNotFound = errors.New("run not found")

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		strategy     TEXT NOT NULL,
		source       TEXT NOT NULL,
		created_at   INTEGER NOT NULL,
		initial_cash TEXT NOT NULL,
		final_equity REAL NOT NULL,
		ticks        INTEGER NOT NULL,
		trades       INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS equity (
		run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		idx       INTEGER NOT NULL,
		timestamp INTEGER NOT NULL,
		equity    REAL NOT NULL,
		PRIMARY KEY (run_id, idx)
	)`,
	`CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at)`,
}

// RunRecord is the summary of one persisted backtest run.
type RunRecord struct {
	ID          string
	Name        string
	Strategy    string
	Source      string
	CreatedAt   time.Time
	InitialCash decimal.Decimal
	FinalEquity float64
	Ticks       int
	Trades      int
}

// RunStore persists run summaries and their equity curves in SQLite.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (or creates) a SQLite database at dbPath and migrates it.
func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers anyway.
	db.SetMaxOpenConns(1)

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate run store: %w", err)
		}
	}
	return &RunStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// SaveRun stores rec and its equity curve in one transaction and returns
// the run ID. A new UUID is assigned when rec.ID is empty.
func (s *RunStore) SaveRun(ctx context.Context, rec RunRecord, series *engine.EquitySeries) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, strategy, source, created_at, initial_cash, final_equity, ticks, trades)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Strategy, rec.Source, rec.CreatedAt.UnixNano(),
		rec.InitialCash.String(), rec.FinalEquity, rec.Ticks, rec.Trades,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO equity (run_id, idx, timestamp, equity) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for i := 0; i < series.Len(); i++ {
		if _, err := stmt.ExecContext(ctx, rec.ID, i, series.Timestamp(i), series.At(i)); err != nil {
			return "", fmt.Errorf("insert equity point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// GetRun retrieves a single run summary by its ID.
func (s *RunStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, strategy, source, created_at, initial_cash, final_equity, ticks, trades
		 FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
// A limit <= 0 returns every run.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, strategy, source, created_at, initial_cash, final_equity, ticks, trades
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *rec)
	}
	return runs, rows.Err()
}

// LoadEquity reads back the equity curve stored with a run.
func (s *RunStore) LoadEquity(ctx context.Context, id string) (*engine.EquitySeries, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, equity FROM equity WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timestamps []int64
	var values []float64
	for rows.Next() {
		var ts int64
		var eq float64
		if err := rows.Scan(&ts, &eq); err != nil {
			return nil, err
		}
		timestamps = append(timestamps, ts)
		values = append(values, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return engine.NewEquitySeries(timestamps, values), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var rec RunRecord
	var createdAt int64
	var cash string
	err := row.Scan(&rec.ID, &rec.Name, &rec.Strategy, &rec.Source, &createdAt,
		&cash, &rec.FinalEquity, &rec.Ticks, &rec.Trades)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	if rec.InitialCash, err = decimal.NewFromString(cash); err != nil {
		return nil, fmt.Errorf("run %s initial cash: %w", rec.ID, err)
	}
	return &rec, nil
}
