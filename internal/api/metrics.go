package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// promMetrics holds the Prometheus instruments for the scoring server.
type promMetrics struct {
	registry *prometheus.Registry

	pagesScored    prometheus.Counter
	scoringErrors  prometheus.Counter
	semanticFalls  prometheus.Counter
	scoreHist      prometheus.Histogram
	requests       *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
}

// newPromMetrics builds the instruments on a private registry so the
// /metrics endpoint exposes only docscore series.
func newPromMetrics() *promMetrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &promMetrics{
		registry: registry,
		pagesScored: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "docscore",
			Name:      "pages_scored_total",
			Help:      "Total number of pages scored successfully",
		}),
		scoringErrors: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "docscore",
			Name:      "scoring_errors_total",
			Help:      "Total number of scoring requests rejected as invalid",
		}),
		semanticFalls: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "docscore",
			Name:      "semantic_fallbacks_total",
			Help:      "Total number of runs that fell back to the heuristic estimator",
		}),
		scoreHist: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docscore",
			Name:      "composite_score",
			Help:      "Distribution of composite scores",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		}),
		requests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docscore",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and status code",
		}, []string{"endpoint", "code"}),
		requestSeconds: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docscore",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
