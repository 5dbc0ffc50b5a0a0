package retry

import (
	"github.com/prometheus/client_golang/prometheus"
)

var llmRetriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "llm_retries_total",
		Help: "Total provider-level retries by provider and reason.",
	},
	[]string{"provider", "reason"},
)

func init() {
	prometheus.MustRegister(llmRetriesTotal)
}

func observeRetry(provider, reason string) {
	if provider == "" {
		provider = "unknown"
	}
	llmRetriesTotal.WithLabelValues(provider, reason).Inc()
}
