package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"equitycurve/internal/engine"
	"equitycurve/internal/store"
)

var runDBFlag = &cli.StringFlag{
	Name:     "run-db",
	Usage:    "SQLite database runs were recorded in",
	Required: true,
}

var runsCommand = &cli.Command{
	Name:  "runs",
	Usage: "inspect recorded runs",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "list recorded runs, newest first",
			Flags: []cli.Flag{
				runDBFlag,
				&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum runs to show, 0 for all"},
			},
			Action: listRuns,
		},
		{
			Name:      "show",
			Usage:     "show one run and its equity curve",
			ArgsUsage: "<run id>",
			Flags: []cli.Flag{
				runDBFlag,
				&cli.StringFlag{Name: "data-dir", Usage: "read the equity curve from this Parquet store instead", TakesFile: true},
			},
			Action: showRun,
		},
	},
}

func listRuns(c *cli.Context) error {
	runs, err := store.NewRunStore(c.String("run-db"))
	if err != nil {
		return err
	}
	defer runs.Close()

	records, err := runs.ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTRATEGY\tSOURCE\tTICKS\tTRADES\tFINAL EQUITY")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%.2f\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Strategy, r.Source, r.Ticks, r.Trades, r.FinalEquity)
	}
	return tw.Flush()
}

func showRun(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	id := c.Args().First()

	runs, err := store.NewRunStore(c.String("run-db"))
	if err != nil {
		return err
	}
	defer runs.Close()

	rec, err := runs.GetRun(c.Context, id)
	if err != nil {
		return err
	}
	var series *engine.EquitySeries
	if dir := c.String("data-dir"); dir != "" {
		series, err = store.NewParquetStore(dir).ReadEquity(c.Context, id)
	} else {
		series, err = runs.LoadEquity(c.Context, id)
	}
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Run:          %s\n", rec.ID)
	fmt.Fprintf(w, "Created:      %s\n", rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Strategy:     %s\n", rec.Strategy)
	fmt.Fprintf(w, "Source:       %s\n", rec.Source)
	fmt.Fprintf(w, "Initial Cash: %s\n", rec.InitialCash.StringFixed(2))
	fmt.Fprintf(w, "Final Equity: %.2f\n", rec.FinalEquity)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tTIME\tEQUITY")
	for i, p := range series.Points() {
		fmt.Fprintf(tw, "%d\t%s\t%g\n", i, p.Time().Format(time.RFC3339), p.Equity)
	}
	return tw.Flush()
}
