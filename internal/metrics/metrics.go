// Package metrics provides Prometheus metrics for the PokeWealth backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokewealth_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokewealth_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Analysis Metrics
	AnalysisRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokewealth_analysis_requests_total",
			Help: "Card analysis requests by result",
		},
		[]string{"result"}, // "success" or "failed"
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokewealth_analysis_duration_seconds",
			Help:    "End-to-end card analysis latency",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Gemini API Metrics
	GeminiRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokewealth_gemini_requests_total",
			Help: "Total Gemini API requests",
		},
	)

	GeminiAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokewealth_gemini_api_latency_seconds",
			Help:    "Gemini API call latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	GeminiErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokewealth_gemini_errors_total",
			Help: "Gemini API errors by type",
		},
		[]string{"type"}, // "network", "read", "api", "parse", "empty"
	)

	EstimateCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokewealth_estimate_cache_hits_total",
			Help: "AI price estimate cache hit count",
		},
	)

	EstimateCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokewealth_estimate_cache_misses_total",
			Help: "AI price estimate cache miss count",
		},
	)

	// Pricing API Metrics
	PriceLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokewealth_price_lookups_total",
			Help: "Pricing API lookups by outcome",
		},
		[]string{"outcome"}, // "match", "no_match", "error", "rate_limited", "unconfigured"
	)

	PriceLookupLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokewealth_price_lookup_latency_seconds",
			Help:    "Pricing API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// Ledger Metrics
	LedgerAppendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokewealth_ledger_appends_total",
			Help: "Price history entries appended",
		},
	)

	// Portfolio Metrics
	CollectionCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokewealth_collection_cards_total",
			Help: "Number of cards in the collection",
		},
	)

	PortfolioValueUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokewealth_portfolio_value_usd",
			Help: "Total estimated portfolio value in USD",
		},
	)
)
