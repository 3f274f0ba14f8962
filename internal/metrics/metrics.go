package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"equitycurve/internal/engine"
)

var _ engine.Recorder = (*Recorder)(nil)

// Recorder collects per-job sweep metrics on its own registry, so a batch
// run can dump them to a node_exporter textfile when it finishes.
type Recorder struct {
	registry *prometheus.Registry

	JobsTotal      *prometheus.CounterVec
	JobDuration    *prometheus.HistogramVec
	TicksTotal     *prometheus.CounterVec
	TradesTotal    *prometheus.CounterVec
	FinalEquity    *prometheus.GaugeVec
	ValidationFail *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "backtest_jobs_total", Help: "Backtest jobs finished, by outcome"},
			[]string{"strategy", "status"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backtest_job_duration_seconds",
				Help:    "Wall time of a backtest job including signal generation",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"strategy"},
		),
		TicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "backtest_ticks_total", Help: "Ticks processed by successful jobs"},
			[]string{"strategy"},
		),
		TradesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "backtest_trades_total", Help: "Round trips opened by successful jobs"},
			[]string{"strategy"},
		),
		FinalEquity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "backtest_final_equity", Help: "Equity after the last tick of a job"},
			[]string{"job", "strategy"},
		),
		ValidationFail: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "backtest_validation_failures_total", Help: "Jobs rejected by input validation, by kind"},
			[]string{"kind"},
		),
	}
	r.registry.MustRegister(r.JobsTotal, r.JobDuration, r.TicksTotal, r.TradesTotal, r.FinalEquity, r.ValidationFail)
	return r
}

// Registry exposes the registry for gathering or serving.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveJob(res engine.JobResult) {
	r.JobDuration.WithLabelValues(res.Strategy).Observe(res.Duration.Seconds())

	if res.Err != nil {
		r.JobsTotal.WithLabelValues(res.Strategy, "error").Inc()
		if kind := validationKind(res.Err); kind != "" {
			r.ValidationFail.WithLabelValues(kind).Inc()
		}
		return
	}
	r.JobsTotal.WithLabelValues(res.Strategy, "ok").Inc()
	if res.Result == nil {
		return
	}
	r.TicksTotal.WithLabelValues(res.Strategy).Add(float64(res.Result.Equity.Len()))
	r.TradesTotal.WithLabelValues(res.Strategy).Add(float64(len(res.Result.Trades)))
	if last, ok := res.Result.Equity.Last(); ok {
		r.FinalEquity.WithLabelValues(res.Job, res.Strategy).Set(last.Equity)
	}
}

// WriteTextfile writes every collected metric to path in the text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func validationKind(err error) string {
	switch {
	case errors.Is(err, engine.ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, engine.ErrNonMonotonicTime):
		return "non_monotonic_time"
	case errors.Is(err, engine.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, engine.ErrInvalidVolume):
		return "invalid_volume"
	case errors.Is(err, engine.ErrInvalidSignal):
		return "invalid_signal"
	}
	return ""
}
