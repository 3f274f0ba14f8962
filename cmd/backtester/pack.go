package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"equitycurve/internal/contract"
	"equitycurve/internal/engine"
	"equitycurve/strategies"
	"equitycurve/strategies/builtin"
)

var packCommand = &cli.Command{
	Name:  "pack",
	Usage: "convert ticks to the binary tick file format, optionally with a strategy's signals",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "binary tick file to write", Required: true},
		&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Usage: "also compute this strategy's signals"},
		&cli.StringFlag{Name: "signals-out", Usage: "binary signal file to write, requires --strategy"},
	}, dataFlags...),
	Action: packTicks,
}

func packTicks(c *cli.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	applyDataFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.IsSet("signals-out") != c.IsSet("strategy") {
		return fmt.Errorf("--signals-out and --strategy must be given together")
	}

	ticks, err := loadTicks(c.Context, cfg.Data)
	if err != nil {
		return err
	}
	err = writeFile(c.String("out"), func(f *os.File) error {
		return contract.WriteTicksFile(f, ticks)
	})
	if err != nil {
		return fmt.Errorf("write ticks: %w", err)
	}
	log.Info().Int("ticks", len(ticks)).Str("path", c.String("out")).Msg("ticks packed")

	if !c.IsSet("strategy") {
		return nil
	}
	name := c.String("strategy")
	var params strategies.Params
	if name == cfg.Strategy.Name {
		params = cfg.Strategy.Params
	}
	strat, err := builtin.NewRegistry().New(name, params)
	if err != nil {
		return err
	}
	signals := strat.Signals(ticks)
	err = writeFile(c.String("signals-out"), func(f *os.File) error {
		return contract.WriteSignalsFile(f, signals)
	})
	if err != nil {
		return fmt.Errorf("write signals: %w", err)
	}
	log.Info().Str("strategy", strat.Name()).Str("path", c.String("signals-out")).Msg("signals packed")
	return nil
}

var performCommand = &cli.Command{
	Name:  "perform",
	Usage: "run binary tick and signal files through the engine and write a binary equity file",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "ticks", Usage: "binary tick file", Required: true, TakesFile: true},
		&cli.StringFlag{Name: "signals", Usage: "binary signal file", Required: true, TakesFile: true},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "binary equity file to write", Required: true},
	}, accountFlags...),
	Action: performFiles,
}

func performFiles(c *cli.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	applyAccountFlags(c, cfg)

	tickBuf, n, err := readPayload(c.String("ticks"), contract.KindTick)
	if err != nil {
		return err
	}
	signalBuf, _, err := readPayload(c.String("signals"), contract.KindSignal)
	if err != nil {
		return err
	}

	acct, err := cfg.AccountConfig()
	if err != nil {
		return err
	}
	eng, err := engine.NewEngine(acct)
	if err != nil {
		return err
	}
	out := make([]byte, n*contract.EquitySize)
	if err := contract.Perform(eng, tickBuf, n, signalBuf, out); err != nil {
		return err
	}

	err = writeFile(c.String("out"), func(f *os.File) error {
		return contract.WriteFile(f, contract.KindEquity, out)
	})
	if err != nil {
		return fmt.Errorf("write equity: %w", err)
	}
	log.Info().
		Int("ticks", n).
		Str("initial_cash", acct.InitialCash.StringFixed(2)).
		Str("path", c.String("out")).
		Msg("equity written")
	return nil
}

// readPayload returns the raw records of a framed file of the given kind.
func readPayload(path string, want contract.Kind) ([]byte, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	kind, n, payload, err := contract.ReadFile(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	if kind != want {
		return nil, 0, fmt.Errorf("%s: %w: got %s, want %s", path, contract.ErrWrongKind, kind, want)
	}
	return payload, n, nil
}

