package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type AssistantMetrics struct {
	registry *prometheus.Registry

	ingestTotal      *prometheus.CounterVec
	ingestSegments   *prometheus.HistogramVec
	ingestDuration   *prometheus.HistogramVec
	askTotal         *prometheus.CounterVec
	askDuration      *prometheus.HistogramVec
	contextPassages  *prometheus.HistogramVec
	retrievalHits    *prometheus.CounterVec
	noContextTotal   *prometheus.CounterVec
	routedRetrievers *prometheus.HistogramVec
}

func NewAssistantMetrics(service string) *AssistantMetrics {
	registry := prometheus.NewRegistry()

	ingestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "ingest",
			Name:      "sources_total",
			Help:      "Total ingested sources by status.",
		},
		[]string{"service", "source", "status"},
	)
	ingestSegments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "ingest",
			Name:      "segments",
			Help:      "Distribution of indexed segments per source.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "source"},
	)
	ingestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Source ingestion duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "source"},
	)
	askTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "session",
			Name:      "asks_total",
			Help:      "Total completed session turns by status.",
		},
		[]string{"service", "status"},
	)
	askDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "session",
			Name:      "ask_duration_seconds",
			Help:      "End-to-end turn duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	contextPassages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "retrieval",
			Name:      "context_passages",
			Help:      "Distribution of passages assembled per turn.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	retrievalHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "retrieval",
			Name:      "hit_total",
			Help:      "Total turns with at least one retrieved passage.",
		},
		[]string{"service"},
	)
	noContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "retrieval",
			Name:      "no_context_total",
			Help:      "Total turns answered without retrieved context.",
		},
		[]string{"service"},
	)
	routedRetrievers := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "routing",
			Name:      "selected_retrievers",
			Help:      "Distribution of retrievers selected per turn.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		ingestTotal,
		ingestSegments,
		ingestDuration,
		askTotal,
		askDuration,
		contextPassages,
		retrievalHits,
		noContextTotal,
		routedRetrievers,
	)

	return &AssistantMetrics{
		registry:         registry,
		ingestTotal:      ingestTotal,
		ingestSegments:   ingestSegments,
		ingestDuration:   ingestDuration,
		askTotal:         askTotal,
		askDuration:      askDuration,
		contextPassages:  contextPassages,
		retrievalHits:    retrievalHits,
		noContextTotal:   noContextTotal,
		routedRetrievers: routedRetrievers,
	}
}

func (m *AssistantMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *AssistantMetrics) RecordIngest(service, source string, segments int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ingestTotal.WithLabelValues(service, source, status).Inc()
	if err != nil {
		return
	}
	m.ingestSegments.WithLabelValues(service, source).Observe(float64(segments))
	m.ingestDuration.WithLabelValues(service, source).Observe(duration.Seconds())
}

func (m *AssistantMetrics) RecordAsk(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.askTotal.WithLabelValues(service, status).Inc()
	if err != nil {
		return
	}
	m.askDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *AssistantMetrics) RecordContext(service string, selected, passages int) {
	m.routedRetrievers.WithLabelValues(service).Observe(float64(selected))
	m.contextPassages.WithLabelValues(service).Observe(float64(passages))
	if passages > 0 {
		m.retrievalHits.WithLabelValues(service).Inc()
		return
	}
	m.noContextTotal.WithLabelValues(service).Inc()
}
