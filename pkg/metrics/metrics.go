// Package metrics exposes the controller's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "unstaker"

// Submission results
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Metrics owns its registry, so several instances never collide
type Metrics struct {
	registry           *prometheus.Registry
	chainBlock         prometheus.Gauge
	cycles             prometheus.Counter
	cycleErrors        prometheus.Counter
	scoreFailures      prometheus.Counter
	submissions        *prometheus.CounterVec
	cycleDuration      prometheus.Histogram
	lastSubmittedBlock prometheus.Gauge
	totalScore         prometheus.Gauge
}

// New registers every collector plus the Go and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chainBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_block",
			Help:      "Latest block height observed by the controller.",
		}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Scoring cycles started.",
		}),
		cycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_errors_total",
			Help:      "Loop iterations that ended with an absorbed error.",
		}),
		scoreFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_score_failures_total",
			Help:      "Identities scored as zero because scoring failed.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weight_submissions_total",
			Help:      "Weight submissions by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time from cycle start to submission outcome.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		lastSubmittedBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_submitted_block",
			Help:      "Chain height right after the last accepted submission.",
		}),
		totalScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_total_score",
			Help:      "Sum of positive raw scores in the last submitted cycle.",
		}),
	}

	m.registry.MustRegister(
		m.chainBlock,
		m.cycles,
		m.cycleErrors,
		m.scoreFailures,
		m.submissions,
		m.cycleDuration,
		m.lastSubmittedBlock,
		m.totalScore,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests and custom exporters
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) ObserveBlock(block uint64) {
	m.chainBlock.Set(float64(block))
}

func (m *Metrics) CycleStarted() {
	m.cycles.Inc()
}

func (m *Metrics) CycleFailed() {
	m.cycleErrors.Inc()
}

func (m *Metrics) IdentityScoreFailed() {
	m.scoreFailures.Inc()
}

// Submitted records an accepted submission
func (m *Metrics) Submitted(block uint64, totalScore float64, took time.Duration) {
	m.submissions.WithLabelValues(ResultOK).Inc()
	m.cycleDuration.Observe(took.Seconds())
	m.lastSubmittedBlock.Set(float64(block))
	m.totalScore.Set(totalScore)
}

// SubmitFailed records a rejected or failed submission
func (m *Metrics) SubmitFailed(took time.Duration) {
	m.submissions.WithLabelValues(ResultFailed).Inc()
	m.cycleDuration.Observe(took.Seconds())
}
