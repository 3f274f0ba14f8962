package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"equitycurve/internal/config"
	"equitycurve/internal/engine"
	"equitycurve/internal/metrics"
	"equitycurve/strategies"
	"equitycurve/strategies/builtin"
)

var sweepCommand = &cli.Command{
	Name:  "sweep",
	Usage: "backtest several strategies over the same ticks in parallel",
	Flags: append(append([]cli.Flag{
		&cli.StringSliceFlag{Name: "strategy", Aliases: []string{"s"}, Usage: "strategy to include, repeatable; defaults to sweep.strategies"},
		&cli.IntFlag{Name: "parallelism", Aliases: []string{"p"}, Usage: "concurrent jobs, 0 for GOMAXPROCS"},
		&cli.BoolFlag{Name: "fail-fast", Usage: "stop scheduling jobs after the first failure"},
		&cli.BoolFlag{Name: "progress", Usage: "show a progress bar"},
		&cli.StringFlag{Name: "metrics-file", Usage: "write Prometheus metrics to this textfile"},
	}, dataFlags...), accountFlags...),
	Action: runSweep,
}

func runSweep(c *cli.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	applyDataFlags(c, cfg)
	applyAccountFlags(c, cfg)
	if c.IsSet("strategy") {
		cfg.Sweep.Strategies = nil
		for _, name := range c.StringSlice("strategy") {
			cfg.Sweep.Strategies = append(cfg.Sweep.Strategies, config.Strategy{Name: name})
		}
	}
	if c.IsSet("parallelism") {
		cfg.Sweep.Parallelism = c.Int("parallelism")
	}
	if c.IsSet("fail-fast") {
		cfg.Sweep.FailFast = c.Bool("fail-fast")
	}
	if c.IsSet("progress") {
		cfg.Sweep.Progress = c.Bool("progress")
	}
	if c.IsSet("metrics-file") {
		cfg.Output.MetricsFile = c.String("metrics-file")
	}
	if len(cfg.Sweep.Strategies) == 0 {
		registry := builtin.NewRegistry()
		for _, name := range registry.List() {
			cfg.Sweep.Strategies = append(cfg.Sweep.Strategies, config.Strategy{Name: name})
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ticks, err := loadTicks(c.Context, cfg.Data)
	if err != nil {
		return err
	}
	acct, err := cfg.AccountConfig()
	if err != nil {
		return err
	}

	registry := builtin.NewRegistry()
	jobs := make([]engine.Job, 0, len(cfg.Sweep.Strategies))
	for i, sc := range cfg.Sweep.Strategies {
		strat, err := registry.New(sc.Name, strategies.Params(sc.Params))
		if err != nil {
			return err
		}
		jobs = append(jobs, engine.Job{
			Name:     fmt.Sprintf("%02d-%s", i, sc.Name),
			Ticks:    ticks,
			Strategy: strat,
			Config:   acct,
		})
	}

	recorder := metrics.NewRecorder()
	log.Info().Int("jobs", len(jobs)).Int("ticks", len(ticks)).Msg("sweep started")
	results, sweepErr := engine.Sweep(c.Context, jobs, engine.SweepOptions{
		Parallelism:  cfg.Sweep.Parallelism,
		FailFast:     cfg.Sweep.FailFast,
		ShowProgress: cfg.Sweep.Progress,
		Recorder:     recorder,
		Logger:       &log,
	})

	printSweep(c, results, decimal.NewFromFloat(cfg.Output.RiskFreeRate))

	if p := cfg.Output.MetricsFile; p != "" {
		if err := recorder.WriteTextfile(p); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		log.Info().Str("path", p).Msg("metrics written")
	}
	return sweepErr
}

func printSweep(c *cli.Context, results []engine.JobResult, riskFree decimal.Decimal) {
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tSTRATEGY\tFINAL EQUITY\tRETURN %\tMAX DD %\tSHARPE\tTRADES\tERROR")
	for _, r := range results {
		if r.Err != nil || r.Result == nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t%v\n", r.Job, r.Strategy, r.Err)
			continue
		}
		rep := engine.GenerateReport(r.Result, engine.NewReportingConfig(riskFree, r.Job))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t\n",
			r.Job,
			r.Strategy,
			rep.FinalEquity.StringFixed(2),
			rep.TotalReturn.Mul(decimal.NewFromInt(100)).StringFixed(2),
			rep.MaxDrawdownPercent.Mul(decimal.NewFromInt(100)).StringFixed(2),
			rep.SharpeRatio.StringFixed(4),
			rep.TotalTrades+rep.OpenTrades,
		)
	}
	tw.Flush()
}
