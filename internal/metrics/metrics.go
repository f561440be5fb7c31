// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mcqforge"

// Metrics groups every collector. A nil *Metrics records nothing.
type Metrics struct {
	answers           *prometheus.CounterVec
	loads             *prometheus.CounterVec
	generations       *prometheus.CounterVec
	generationSeconds prometheus.Histogram
	activeSessions    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answer attempts by result (correct, incorrect, rejected).",
		}, []string{"result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_loads_total",
			Help:      "Question sets loaded into sessions by source.",
		}, []string{"source"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Image generation requests by outcome.",
		}, []string{"outcome"}),
		generationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of calls to the generation service, retries included.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
	}
	reg.MustRegister(m.answers, m.loads, m.generations, m.generationSeconds, m.activeSessions)
	return m
}

func (m *Metrics) AnswerRecorded(correct bool) {
	if m == nil {
		return
	}
	if correct {
		m.answers.WithLabelValues("correct").Inc()
		return
	}
	m.answers.WithLabelValues("incorrect").Inc()
}

func (m *Metrics) AnswerRejected() {
	if m == nil {
		return
	}
	m.answers.WithLabelValues("rejected").Inc()
}

func (m *Metrics) SetLoaded(source string) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(source).Inc()
}

// Generation records one generation request. outcome is one of ok,
// cache_hit, invalid or error.
func (m *Metrics) Generation(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	if outcome != "cache_hit" {
		m.generationSeconds.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) SessionsActive(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
