package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/kgscrape/internal/fetch"
	"github.com/nao1215/kgscrape/internal/model"
)

// Namespace prefixes every metric name.
const Namespace = "kgscrape"

// Record status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the collectors of one run on a private registry.
//
// Design decision: We use a private registry rather than the global
// default so tests and repeated runs in one process never collide, and
// the textfile only carries our own series.
type Metrics struct {
	registry        *prometheus.Registry
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	records         *prometheus.CounterVec
	entities        prometheus.Counter
	relationships   prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetch_attempts_total",
			Help:      "Fetch attempts by site category and outcome.",
		}, []string{"category", "outcome"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fetch_attempt_duration_seconds",
			Help:      "Duration of single fetch attempts, probe included.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 15, 20, 30},
		}, []string{"strategy"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_total",
			Help:      "Knowledge records produced, by status.",
		}, []string{"status"}),
		entities: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "entities_total",
			Help:      "Entities extracted across successful records.",
		}),
		relationships: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "relationships_total",
			Help:      "Relationships built across successful records.",
		}),
	}

	m.registry.MustRegister(m.attempts, m.attemptDuration, m.records, m.entities, m.relationships)
	return m
}

// ObserveAttempt counts one fetch attempt. Its signature matches
// fetch.Observer.
func (m *Metrics) ObserveAttempt(a fetch.FetchAttempt) {
	m.attempts.WithLabelValues(a.Category.String(), a.Outcome()).Inc()
	strategy := a.Strategy
	if strategy == "" {
		strategy = "none"
	}
	m.attemptDuration.WithLabelValues(strategy).Observe(a.Elapsed.Seconds())
}

// ObserveRecord counts one finished record.
func (m *Metrics) ObserveRecord(r *model.KnowledgeRecord) {
	if r == nil {
		return
	}
	if r.Error {
		m.records.WithLabelValues(StatusError).Inc()
		return
	}
	m.records.WithLabelValues(StatusSuccess).Inc()
	m.entities.Add(float64(len(r.Entities)))
	m.relationships.Add(float64(len(r.Relationships)))
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes every series to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
