package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copilot_query_duration_seconds",
			Help:    "Question processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"classification"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_query_total",
			Help: "Total number of questions processed",
		},
		[]string{"status"},
	)

	SecurityBlocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "copilot_security_blocks_total",
			Help: "Total questions rejected by the security gate",
		},
	)

	LLMCallsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "copilot_llm_calls_total",
			Help: "Total successful generative backend calls",
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_llm_tokens_used",
			Help: "Estimated LLM tokens consumed",
		},
		[]string{"type"},
	)

	LLMCost = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "copilot_llm_cost_usd",
			Help: "Estimated LLM API cost in USD",
		},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "copilot_confidence_score",
			Help:    "Answer confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "copilot_cache_hits_total",
			Help: "Total answer cache hits",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "copilot_cache_misses_total",
			Help: "Total answer cache misses",
		},
	)
)

func Init() {
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(SecurityBlocksTotal)
	prometheus.MustRegister(LLMCallsTotal)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(LLMCost)
	prometheus.MustRegister(ConfidenceScore)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
