package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var (
	llmRouteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_route_requests_total",
			Help: "Total routed completion attempts by tier, provider and outcome.",
		},
		[]string{"tier", "provider", "outcome"},
	)
	llmRouteFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_route_fallbacks_total",
			Help: "Total fallbacks to the next tier after a provider failure.",
		},
		[]string{"tier", "provider"},
	)
	llmProviderHealthy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "llm_provider_healthy",
			Help: "LLM provider health status (1 healthy, 0 unhealthy).",
		},
		[]string{"provider"},
	)
	llmProviderHealthCheckLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_provider_health_check_latency_ms",
			Help:    "LLM provider health check latency in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(
		llmRouteRequestsTotal,
		llmRouteFallbacksTotal,
		llmProviderHealthy,
		llmProviderHealthCheckLatencyMs,
	)
}

func observeRouteRequest(tier CostTier, provider, outcome string) {
	if provider == "" {
		provider = "unknown"
	}
	llmRouteRequestsTotal.WithLabelValues(tier.String(), provider, outcome).Inc()
}

func observeFallback(tier CostTier, provider string) {
	if provider == "" {
		provider = "unknown"
	}
	llmRouteFallbacksTotal.WithLabelValues(tier.String(), provider).Inc()
}

func observeProviderHealth(provider string, st *HealthStatus) {
	if provider == "" {
		provider = "unknown"
	}
	healthy := 0.0
	if st.Healthy {
		healthy = 1.0
	}
	llmProviderHealthy.WithLabelValues(provider).Set(healthy)
	llmProviderHealthCheckLatencyMs.WithLabelValues(provider).
		Observe(float64(st.Latency) / float64(time.Millisecond))
}
