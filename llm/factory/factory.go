// Package factory builds the tier registry and router from configuration.
// It imports all provider sub-packages and maps config blocks to their
// constructors, keeping that knowledge out of the llm package itself.
package factory

import (
	"go.uber.org/zap"

	"github.com/Axionautomation/momentum/config"
	"github.com/Axionautomation/momentum/llm"
	"github.com/Axionautomation/momentum/llm/observability"
	"github.com/Axionautomation/momentum/llm/providers"
	"github.com/Axionautomation/momentum/llm/providers/anthropic"
	"github.com/Axionautomation/momentum/llm/providers/groq"
	"github.com/Axionautomation/momentum/llm/providers/openai"
)

// NewRegistry builds a TierRegistry from configuration.
//
// Groq is always constructed and registered on the fast tier: registration
// reflects availability of the client, not of the credential, so an
// unconfigured key fails at request time and the router falls through.
// OpenAI and Anthropic are registered only when their API key is configured
// (non-empty and not a sample placeholder). A provider whose construction
// fails is logged and skipped; it is never fatal to the others.
func NewRegistry(cfg *config.Config, logger *zap.Logger) *llm.TierRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := llm.NewTierRegistry()

	register := func(tier llm.CostTier, name string, p llm.Provider, err error) {
		if err != nil {
			logger.Warn("skipping provider: initialization failed",
				zap.String("provider", name),
				zap.Error(err))
			return
		}
		reg.Register(tier, p)
		logger.Info("provider registered",
			zap.String("provider", name),
			zap.String("tier", tier.String()))
	}

	g, err := groq.New(options(cfg.LLM.Groq, cfg.LLM.Retry, logger))
	register(llm.TierFast, groq.ProviderName, g, err)

	if cfg.LLM.OpenAI.Configured() {
		o, err := openai.New(options(cfg.LLM.OpenAI, cfg.LLM.Retry, logger))
		register(llm.TierStandard, openai.ProviderName, o, err)
	} else {
		logger.Debug("openai not configured, tier left empty",
			zap.String("tier", llm.TierStandard.String()))
	}

	if cfg.LLM.Anthropic.Configured() {
		a, err := anthropic.New(options(cfg.LLM.Anthropic, cfg.LLM.Retry, logger))
		register(llm.TierPremium, anthropic.ProviderName, a, err)
	} else {
		logger.Debug("anthropic not configured, tier left empty",
			zap.String("tier", llm.TierPremium.String()))
	}

	return reg
}

// NewRouter builds a Router over a config-driven registry, wiring in the
// OpenTelemetry instruments. Instrument creation failing never blocks
// startup; the router simply runs uninstrumented.
func NewRouter(cfg *config.Config, logger *zap.Logger) (*llm.Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		logger.Warn("metrics instruments unavailable", zap.Error(err))
		metrics = nil
	}

	return llm.NewRouter(NewRegistry(cfg, logger), &llm.RouterOptions{
		Logger:  logger,
		Metrics: metrics,
	}), nil
}

func options(pc config.ProviderConfig, rc config.RetryConfig, logger *zap.Logger) providers.Options {
	return providers.Options{
		APIKey:     pc.APIKey,
		BaseURL:    pc.BaseURL,
		Model:      pc.Model,
		Timeout:    pc.Timeout,
		MaxRetries: rc.MaxRetries,
		Logger:     logger,
	}
}
