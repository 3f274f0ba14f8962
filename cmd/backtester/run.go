package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"equitycurve/internal/config"
	"equitycurve/internal/contract"
	"equitycurve/internal/engine"
	"equitycurve/internal/store"
	"equitycurve/strategies"
	"equitycurve/strategies/builtin"
	"equitycurve/types"
)

var dataFlags = []cli.Flag{
	&cli.StringFlag{Name: "source", Usage: "tick source: csv, parquet, binary, store or postgres"},
	&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "tick file for csv, parquet and binary sources", TakesFile: true},
	&cli.StringFlag{Name: "ticker", Usage: "ticker for store and postgres sources"},
	&cli.StringFlag{Name: "interval", Usage: "tick interval (1, 5, 15, 30, 60, 240, D, W)"},
	&cli.StringFlag{Name: "start", Usage: "first day to load, YYYY-MM-DD"},
	&cli.StringFlag{Name: "end", Usage: "day after the last day to load, YYYY-MM-DD"},
	&cli.StringFlag{Name: "data-dir", Usage: "Parquet store directory", TakesFile: true},
}

var accountFlags = []cli.Flag{
	&cli.Float64Flag{Name: "cash", Usage: "initial cash"},
	&cli.StringFlag{Name: "units", Usage: "whole or fractional position sizing"},
}

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "backtest one strategy over one tick sequence",
	Flags: append(append([]cli.Flag{
		&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Usage: "registered strategy name"},
		&cli.StringFlag{Name: "signals", Usage: "binary or CSV signal file to use instead of a strategy", TakesFile: true},
		&cli.StringFlag{Name: "equity-csv", Usage: "write the equity curve as CSV"},
		&cli.StringFlag{Name: "trades-csv", Usage: "write trades as CSV"},
		&cli.StringFlag{Name: "equity-out", Usage: "write the equity curve as a binary equity file"},
		&cli.StringFlag{Name: "run-db", Usage: "SQLite database to record the run in"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "do not print the report"},
	}, dataFlags...), accountFlags...),
	Action: runBacktest,
}

func runBacktest(c *cli.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	applyDataFlags(c, cfg)
	applyAccountFlags(c, cfg)
	if c.IsSet("strategy") {
		cfg.Strategy = config.Strategy{Name: c.String("strategy")}
	}
	for flag, dst := range map[string]*string{
		"equity-csv": &cfg.Output.EquityCSV,
		"trades-csv": &cfg.Output.TradesCSV,
		"equity-out": &cfg.Output.EquityFile,
		"run-db":     &cfg.Output.RunDB,
	} {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	if c.Bool("quiet") {
		cfg.Output.Report = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ticks, err := loadTicks(c.Context, cfg.Data)
	if err != nil {
		return err
	}
	log.Info().Int("ticks", len(ticks)).Str("source", sourceName(cfg.Data)).Msg("ticks loaded")

	acct, err := cfg.AccountConfig()
	if err != nil {
		return err
	}
	eng, err := engine.NewEngine(acct)
	if err != nil {
		return err
	}

	name, signals, err := runSignals(c, cfg.Strategy, ticks)
	if err != nil {
		return err
	}
	result, err := eng.Run(ticks, signals)
	if err != nil {
		return err
	}
	last, _ := result.Equity.Last()
	log.Info().
		Str("strategy", name).
		Int("trades", len(result.Trades)).
		Float64("final_equity", last.Equity).
		Msg("backtest finished")

	if cfg.Output.Report {
		report := engine.GenerateReport(result, engine.NewReportingConfig(
			decimal.NewFromFloat(cfg.Output.RiskFreeRate), name))
		report.Print(c.App.Writer)
	}
	return writeOutputs(c, cfg, log, name, ticks, signals, result)
}

// runSignals yields the signals for a run: read from --signals when given,
// otherwise computed by the configured strategy.
func runSignals(c *cli.Context, sc config.Strategy, ticks []types.Tick) (string, []types.Signal, error) {
	if path := c.String("signals"); path != "" {
		signals, err := readSignals(path)
		if err != nil {
			return "", nil, fmt.Errorf("read signals: %w", err)
		}
		return "file", signals, nil
	}
	strat, err := builtin.NewRegistry().New(sc.Name, strategies.Params(sc.Params))
	if err != nil {
		return "", nil, err
	}
	return strat.Name(), strat.Signals(ticks), nil
}

// readSignals reads a binary signal file, or a CSV with a signal column when
// the path ends in .csv.
func readSignals(path string) ([]types.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return store.ReadSignalsCSV(f)
	}
	return contract.ReadSignalsFile(f)
}

func writeOutputs(c *cli.Context, cfg *config.Config, log zerolog.Logger, name string, ticks []types.Tick, signals []types.Signal, result *engine.Result) error {
	if p := cfg.Output.EquityCSV; p != "" {
		if err := engine.WriteEquityCSVFile(p, ticks, signals, result.Equity); err != nil {
			return err
		}
		log.Info().Str("path", p).Msg("equity csv written")
	}
	if p := cfg.Output.TradesCSV; p != "" {
		if err := engine.WriteTradesCSVFile(p, result.Trades); err != nil {
			return err
		}
		log.Info().Str("path", p).Msg("trades csv written")
	}
	if p := cfg.Output.EquityFile; p != "" {
		err := writeFile(p, func(f *os.File) error {
			return contract.WriteEquityFile(f, result.Equity.Values())
		})
		if err != nil {
			return fmt.Errorf("write equity file: %w", err)
		}
		log.Info().Str("path", p).Msg("equity file written")
	}
	if p := cfg.Output.RunDB; p != "" {
		id, err := saveRun(c, p, cfg, name, result)
		if err != nil {
			return err
		}
		log.Info().Str("run", id).Str("db", p).Msg("run recorded")
		if cfg.Data.DataDir != "" {
			if err := store.NewParquetStore(cfg.Data.DataDir).WriteEquity(c.Context, id, result.Equity); err != nil {
				return err
			}
		}
	}
	return nil
}

func saveRun(c *cli.Context, path string, cfg *config.Config, name string, result *engine.Result) (string, error) {
	runs, err := store.NewRunStore(path)
	if err != nil {
		return "", err
	}
	defer runs.Close()

	last, _ := result.Equity.Last()
	return runs.SaveRun(c.Context, store.RunRecord{
		Name:        name,
		Strategy:    name,
		Source:      sourceName(cfg.Data),
		InitialCash: result.InitialCash,
		FinalEquity: last.Equity,
		Ticks:       result.Equity.Len(),
		Trades:      len(result.Trades),
	}, result.Equity)
}

func applyDataFlags(c *cli.Context, cfg *config.Config) {
	for flag, dst := range map[string]*string{
		"source":   &cfg.Data.Source,
		"input":    &cfg.Data.Path,
		"ticker":   &cfg.Data.Ticker,
		"interval": &cfg.Data.Interval,
		"start":    &cfg.Data.Start,
		"end":      &cfg.Data.End,
		"data-dir": &cfg.Data.DataDir,
	} {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	if c.IsSet("input") && !c.IsSet("source") {
		cfg.Data.Source = sourceFromPath(cfg.Data.Path)
	}
}

func sourceFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return config.SourceParquet
	case ".bin", ".eqbt":
		return config.SourceBinary
	}
	return config.SourceCSV
}

func applyAccountFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("cash") {
		cfg.Account.InitialCash = c.Float64("cash")
	}
	if c.IsSet("units") {
		cfg.Account.Units = c.String("units")
	}
}
