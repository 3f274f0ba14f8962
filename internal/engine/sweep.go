package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"equitycurve/types"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

var ErrNoStrategy = errors.New("job has no signal source")

// Job is one isolated backtest: its own ticks, its own strategy, its own account.
type Job struct {
	Name     string
	Ticks    []types.Tick
	Strategy SignalSource
	Config   AccountConfig
}

type JobResult struct {
	Job      string
	Strategy string
	Signals  []types.Signal
	Result   *Result
	Duration time.Duration
	Err      error
}

type SweepOptions struct {
	// Parallelism caps concurrent jobs; <= 0 means GOMAXPROCS.
	Parallelism int
	// FailFast cancels jobs that have not started once one job fails.
	FailFast       bool
	ShowProgress   bool
	ProgressWriter io.Writer
	Recorder       Recorder
	Logger         *zerolog.Logger
}

// RunStrategy asks src for signals over ticks and runs them through eng.
func RunStrategy(eng *Engine, ticks []types.Tick, src SignalSource) (*Result, []types.Signal, error) {
	if src == nil {
		return nil, nil, ErrNoStrategy
	}
	signals := src.Signals(ticks)
	result, err := eng.Run(ticks, signals)
	if err != nil {
		return nil, signals, fmt.Errorf("strategy %s: %w", src.Name(), err)
	}
	return result, signals, nil
}

// Sweep runs independent jobs concurrently. Results come back in job order.
// A failed job is reported in its JobResult; the returned error is non-nil
// only when ctx is cancelled or, with FailFast, for the first failure.
func Sweep(ctx context.Context, jobs []Job, opts SweepOptions) ([]JobResult, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = initProgressBar(len(jobs), opts.ProgressWriter)
		defer bar.Finish()
	}

	results := make([]JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = JobResult{Job: job.Name, Err: err}
				return nil
			}

			res := runJob(job)
			results[i] = res
			if opts.Recorder != nil {
				opts.Recorder.ObserveJob(res)
			}
			if bar != nil {
				_ = bar.Add(1)
			}

			if res.Err != nil {
				log.Warn().Err(res.Err).Str("job", job.Name).Msg("backtest failed")
				if opts.FailFast {
					return fmt.Errorf("job %s: %w", job.Name, res.Err)
				}
				return nil
			}
			last, _ := res.Result.Equity.Last()
			log.Debug().
				Str("job", job.Name).
				Str("strategy", res.Strategy).
				Int("ticks", len(job.Ticks)).
				Int("trades", len(res.Result.Trades)).
				Float64("final_equity", last.Equity).
				Dur("took", res.Duration).
				Msg("backtest finished")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func runJob(job Job) JobResult {
	start := time.Now()
	res := JobResult{Job: job.Name}
	if job.Strategy == nil {
		res.Err = ErrNoStrategy
		return res
	}
	res.Strategy = job.Strategy.Name()

	eng, err := NewEngine(job.Config)
	if err != nil {
		res.Err = err
		return res
	}
	res.Result, res.Signals, res.Err = RunStrategy(eng, job.Ticks, job.Strategy)
	res.Duration = time.Since(start)
	return res
}

func initProgressBar(max int, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
