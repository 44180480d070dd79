// Package metrics exposes the Prometheus collectors shared by the agent
// pipeline, the generation middleware and the HTTP transport.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hr_agent"

// Retrieval results reported by ObserveRetrieval.
const (
	RetrievalHit     = "hit"
	RetrievalMiss    = "miss"
	RetrievalSkipped = "skipped"
	RetrievalError   = "error"
)

// Collector owns a private registry so several instances can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	dispatches       *prometheus.CounterVec
	dispatchLatency  *prometheus.HistogramVec
	extractions      *prometheus.CounterVec
	generations      *prometheus.CounterVec
	generationTiming *prometheus.HistogramVec
	retrievals       *prometheus.CounterVec
	retrievedChunks  prometheus.Histogram
}

// New registers every collector, plus the Go and process collectors, on a
// fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Agent dispatches by intent and outcome.",
			},
			[]string{"intent", "outcome"},
		),
		dispatchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "End-to-end latency of agent dispatches.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"intent"},
		),
		extractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_total",
				Help:      "Structured completion extractions by final status and attempts used.",
			},
			[]string{"status", "attempts"},
		),
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Generation service calls by provider, model and status.",
			},
			[]string{"provider", "model", "status"},
		),
		generationTiming: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_latency_seconds",
				Help:      "Latency of generation service calls.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"provider", "model", "status"},
		),
		retrievals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retrieval_total",
				Help:      "Context retrievals by result.",
			},
			[]string{"result"},
		),
		retrievedChunks: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieval_chunks",
				Help:      "Number of context chunks returned per retrieval.",
				Buckets:   []float64{0, 1, 2, 3, 4, 6, 8},
			},
		),
	}
}

func (c *Collector) ObserveDispatch(intent, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.dispatches.WithLabelValues(intent, outcome).Inc()
	c.dispatchLatency.WithLabelValues(intent).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveExtraction(status string, attempts int) {
	if c == nil {
		return
	}
	c.extractions.WithLabelValues(status, strconv.Itoa(attempts)).Inc()
}

func (c *Collector) ObserveGeneration(provider, model, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.generations.WithLabelValues(provider, model, status).Inc()
	c.generationTiming.WithLabelValues(provider, model, status).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveRetrieval(result string, chunks int) {
	if c == nil {
		return
	}
	c.retrievals.WithLabelValues(result).Inc()
	if result == RetrievalHit || result == RetrievalMiss {
		c.retrievedChunks.Observe(float64(chunks))
	}
}

// Registry exposes the underlying registry for scraping or tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
