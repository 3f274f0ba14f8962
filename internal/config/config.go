// Package config exposes the typed backtester configuration loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"equitycurve/internal/engine"
	"equitycurve/types"
)

const dateLayout = "2006-01-02"

var ErrInvalidConfig = errors.New("invalid config")

// Data source kinds.
const (
	SourceCSV      = "csv"
	SourceParquet  = "parquet"
	SourceBinary   = "binary"
	SourcePostgres = "postgres"
	SourceStore    = "store"
)

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Data selects where ticks come from.
type Data struct {
	Source      string `yaml:"source"`
	Path        string `yaml:"path"`     // csv, parquet and binary sources
	DataDir     string `yaml:"data_dir"` // store source
	Ticker      string `yaml:"ticker"`
	Interval    string `yaml:"interval"`
	Start       string `yaml:"start"` // YYYY-MM-DD, inclusive
	End         string `yaml:"end"`   // YYYY-MM-DD, exclusive
	DatabaseURL string `yaml:"database_url"`
}

// Account holds the starting bankroll and the unit policy.
type Account struct {
	InitialCash         float64 `yaml:"initial_cash"`
	Units               string  `yaml:"units"`
	FractionalPrecision int32   `yaml:"fractional_precision"`
}

// Strategy names a registered strategy and its parameters.
type Strategy struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

// Output lists the artefacts a run writes. Empty paths are skipped.
type Output struct {
	EquityCSV    string  `yaml:"equity_csv"`
	TradesCSV    string  `yaml:"trades_csv"`
	EquityFile   string  `yaml:"equity_file"`
	RunDB        string  `yaml:"run_db"`
	MetricsFile  string  `yaml:"metrics_file"`
	RiskFreeRate float64 `yaml:"risk_free_rate"`
	Report       bool    `yaml:"report"`
}

// Sweep configures a multi-strategy run.
type Sweep struct {
	Parallelism int        `yaml:"parallelism"`
	FailFast    bool       `yaml:"fail_fast"`
	Progress    bool       `yaml:"progress"`
	Strategies  []Strategy `yaml:"strategies"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	Log      Log      `yaml:"log"`
	Data     Data     `yaml:"data"`
	Account  Account  `yaml:"account"`
	Strategy Strategy `yaml:"strategy"`
	Output   Output   `yaml:"output"`
	Sweep    Sweep    `yaml:"sweep"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: Log{Level: "info", Format: "console"},
		Data: Data{
			Source:   SourceCSV,
			Interval: string(types.Day),
		},
		Account: Account{
			InitialCash:         engine.DefaultInitialCash.InexactFloat64(),
			Units:               string(engine.WholeUnits),
			FractionalPrecision: engine.DefaultFractionalPrecision,
		},
		Strategy: Strategy{Name: "sma-cross"},
		Output:   Output{Report: true},
	}
}

// Load reads a YAML file on top of Default. DATABASE_URL from the
// environment (or a .env file) fills data.database_url when it is unset.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if c.Data.DatabaseURL == "" {
		c.Data.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}

	switch c.Data.Source {
	case SourceCSV, SourceParquet, SourceBinary:
		if c.Data.Path == "" {
			return fmt.Errorf("%w: data.path is required for %s source", ErrInvalidConfig, c.Data.Source)
		}
	case SourceStore, SourcePostgres:
		if c.Data.Ticker == "" {
			return fmt.Errorf("%w: data.ticker is required for %s source", ErrInvalidConfig, c.Data.Source)
		}
		if _, err := types.ParseInterval(c.Data.Interval); err != nil {
			return fmt.Errorf("%w: data.interval: %v", ErrInvalidConfig, err)
		}
		if c.Data.Source == SourceStore && c.Data.DataDir == "" {
			return fmt.Errorf("%w: data.data_dir is required for store source", ErrInvalidConfig)
		}
		if c.Data.Source == SourcePostgres {
			if c.Data.DatabaseURL == "" {
				return fmt.Errorf("%w: data.database_url or DATABASE_URL is required", ErrInvalidConfig)
			}
			if _, _, err := c.Data.Range(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: data.source %q", ErrInvalidConfig, c.Data.Source)
	}

	if c.Account.InitialCash < 0 {
		return fmt.Errorf("%w: account.initial_cash must not be negative", ErrInvalidConfig)
	}
	if _, err := engine.ParseUnitPolicy(c.Account.Units); err != nil {
		return fmt.Errorf("%w: account.units: %v", ErrInvalidConfig, err)
	}
	if c.Account.FractionalPrecision < 0 {
		return fmt.Errorf("%w: account.fractional_precision must not be negative", ErrInvalidConfig)
	}
	if c.Sweep.Parallelism < 0 {
		return fmt.Errorf("%w: sweep.parallelism must not be negative", ErrInvalidConfig)
	}
	return nil
}

// AccountConfig converts the account section for the engine.
func (c *Config) AccountConfig() (engine.AccountConfig, error) {
	units, err := engine.ParseUnitPolicy(c.Account.Units)
	if err != nil {
		return engine.AccountConfig{}, err
	}
	cfg := engine.NewAccountConfig(decimal.NewFromFloat(c.Account.InitialCash), units)
	if c.Account.FractionalPrecision > 0 {
		cfg.FractionalPrecision = c.Account.FractionalPrecision
	}
	return cfg, nil
}

// Range parses the start and end dates as UTC midnights.
func (d Data) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, d.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: data.start: %v", ErrInvalidConfig, err)
	}
	end, err := time.Parse(dateLayout, d.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: data.end: %v", ErrInvalidConfig, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: data.end must be after data.start", ErrInvalidConfig)
	}
	return start, end, nil
}
