package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"equitycurve/internal/config"
	"equitycurve/internal/logging"
	"equitycurve/strategies/builtin"
)

var (
	configPath string
	logLevel   string
)

func main() {
	app := cli.NewApp()
	app.Name = "backtester"
	app.Usage = "tick-by-tick equity backtester for long-only signal strategies"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to a YAML config file",
			TakesFile:   true,
			EnvVars:     []string{"BACKTESTER_CONFIG"},
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "overrides log.level from the config",
			Destination: &logLevel,
		},
	}
	app.Commands = []*cli.Command{
		runCommand,
		sweepCommand,
		strategiesCommand,
		packCommand,
		performCommand,
		runsCommand,
		ingestCommand,
		equityCommand,
		initConfigCommand,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "backtester:", err)
		os.Exit(1)
	}
}

// loadConfig reads the global config file and applies the global flags.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, newLogger(cfg.Log), nil
}

func newLogger(c config.Log) zerolog.Logger {
	w := os.Stderr
	if c.Format == "json" {
		return logging.NewLogger(c.Level, w)
	}
	return logging.NewLogger(c.Level, logging.ConsoleWriter(w))
}

var strategiesCommand = &cli.Command{
	Name:  "strategies",
	Usage: "list the registered strategies",
	Action: func(c *cli.Context) error {
		for _, name := range builtin.NewRegistry().List() {
			fmt.Fprintln(c.App.Writer, name)
		}
		return nil
	},
}
