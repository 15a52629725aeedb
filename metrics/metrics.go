// Package metrics exports the cutting-plane learner's progress as Prometheus
// collectors. A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "ssvm"
	subsystem = "learner"
)

// Recorder groups the learner collectors registered on one Registerer.
type Recorder struct {
	passes         prometheus.Counter
	constraints    *prometheus.CounterVec
	oracleFailures *prometheus.CounterVec
	modeSwitches   prometheus.Counter
	oracleLatency  *prometheus.HistogramVec
	solveLatency   prometheus.Histogram
	objective      *prometheus.GaugeVec
	cacheSize      prometheus.Gauge
	mode           prometheus.Gauge
	trainingLoss   prometheus.Gauge
}

// NewRecorder creates the collectors and registers them on reg.
// Registering twice on the same registry panics, as with promauto.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		passes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "passes_total",
			Help: "Completed passes over the training set",
		}),
		// Labels: event (added, evicted, pruned)
		constraints: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "constraints_total",
			Help: "Working-set constraint events",
		}, []string{"event"}),
		// Labels: mode (approximate, exact)
		oracleFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "oracle_failures_total",
			Help: "Examples skipped because inference failed",
		}, []string{"mode"}),
		modeSwitches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "mode_switches_total",
			Help: "Switches from approximate to exact inference",
		}),
		oracleLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name:    "oracle_latency_seconds",
			Help:    "Loss-augmented inference latency per example",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"mode"}),
		solveLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name:    "master_solve_seconds",
			Help:    "Master problem solve latency",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		// Labels: kind (primal, dual, slack, gap)
		objective: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "objective",
			Help: "Latest objective values",
		}, []string{"kind"}),
		cacheSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "working_set_size",
			Help: "Constraints held in the working set",
		}),
		mode: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "exact_mode",
			Help: "1 while the learner runs exact inference, 0 otherwise",
		}),
		trainingLoss: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "training_loss",
			Help: "Mean training loss under exact inference, from the latest diagnostic pass",
		}),
	}
}

// Pass counts one completed pass.
func (r *Recorder) Pass() {
	if r == nil {
		return
	}
	r.passes.Inc()
}

// Constraints adds n working-set events of the given kind ("added", "evicted", "pruned").
func (r *Recorder) Constraints(event string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.constraints.WithLabelValues(event).Add(float64(n))
}

// OracleFailure counts one skipped example under mode.
func (r *Recorder) OracleFailure(mode string) {
	if r == nil {
		return
	}
	r.oracleFailures.WithLabelValues(mode).Inc()
}

// ModeSwitch counts the approximate-to-exact transition and flips the mode gauge.
func (r *Recorder) ModeSwitch() {
	if r == nil {
		return
	}
	r.modeSwitches.Inc()
	r.mode.Set(1)
}

// Mode sets the mode gauge.
func (r *Recorder) Mode(exact bool) {
	if r == nil {
		return
	}
	if exact {
		r.mode.Set(1)
	} else {
		r.mode.Set(0)
	}
}

// OracleLatency observes one inference call.
func (r *Recorder) OracleLatency(mode string, d time.Duration) {
	if r == nil {
		return
	}
	r.oracleLatency.WithLabelValues(mode).Observe(d.Seconds())
}

// SolveLatency observes one master solve.
func (r *Recorder) SolveLatency(d time.Duration) {
	if r == nil {
		return
	}
	r.solveLatency.Observe(d.Seconds())
}

// Objective publishes the latest primal, dual and slack, and their gap.
func (r *Recorder) Objective(primal, dual, slack float64) {
	if r == nil {
		return
	}
	r.objective.WithLabelValues("primal").Set(primal)
	r.objective.WithLabelValues("dual").Set(dual)
	r.objective.WithLabelValues("slack").Set(slack)
	r.objective.WithLabelValues("gap").Set(primal - dual)
}

// CacheSize publishes the working-set size.
func (r *Recorder) CacheSize(n int) {
	if r == nil {
		return
	}
	r.cacheSize.Set(float64(n))
}

// TrainingLoss publishes the latest diagnostic training loss.
func (r *Recorder) TrainingLoss(loss float64) {
	if r == nil {
		return
	}
	r.trainingLoss.Set(loss)
}
