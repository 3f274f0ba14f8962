package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"equitycurve/internal/config"
	"equitycurve/internal/contract"
	"equitycurve/internal/store"
	"equitycurve/types"
)

var ingestCommand = &cli.Command{
	Name:  "ingest",
	Usage: "merge ticks from a file or Postgres into the Parquet store under --data-dir",
	Flags: dataFlags,
	Action: func(c *cli.Context) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		applyDataFlags(c, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		d := cfg.Data
		if d.Source == config.SourceStore {
			return fmt.Errorf("%w: ingest needs a source other than the store", config.ErrInvalidConfig)
		}
		if d.DataDir == "" || d.Ticker == "" || d.Interval == "" {
			return fmt.Errorf("%w: ingest needs data_dir, ticker and interval", config.ErrInvalidConfig)
		}
		interval, err := types.ParseInterval(d.Interval)
		if err != nil {
			return err
		}

		ticks, err := loadTicks(c.Context, d)
		if err != nil {
			return err
		}
		if err := store.NewParquetStore(d.DataDir).WriteTicks(c.Context, d.Ticker, interval, ticks); err != nil {
			return err
		}
		log.Info().
			Int("ticks", len(ticks)).
			Str("source", sourceName(d)).
			Str("ticker", d.Ticker).
			Str("interval", string(interval)).
			Msg("ticks stored")
		return nil
	},
}

var equityCommand = &cli.Command{
	Name:      "equity",
	Usage:     "print a binary equity file",
	ArgsUsage: "<equity file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.ShowSubcommandHelp(c)
		}
		f, err := os.Open(c.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()

		values, err := contract.ReadEquityFile(f)
		if err != nil {
			return err
		}
		return printEquity(c.App.Writer, values)
	},
}

func printEquity(w io.Writer, values []float64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tEQUITY")
	for i, v := range values {
		fmt.Fprintf(tw, "%d\t%g\n", i, v)
	}
	return tw.Flush()
}

var initConfigCommand = &cli.Command{
	Name:      "init-config",
	Usage:     "write the default configuration as YAML",
	ArgsUsage: "<path>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.ShowSubcommandHelp(c)
		}
		path := c.Args().First()
		if _, err := os.Stat(path); err == nil && !c.Bool("force") {
			return fmt.Errorf("%s exists, use --force to overwrite", path)
		}
		return config.Save(path, config.Default())
	},
}
