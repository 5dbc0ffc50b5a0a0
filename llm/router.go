package llm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Axionautomation/momentum/llm/observability"
	"github.com/Axionautomation/momentum/llm/tokenizer"
)

// FallbackChain returns the tier order for one routing attempt: the
// preferred tier first, then the remaining tiers in ascending cost order.
// Every declared tier appears exactly once, so the chain always has
// length three and is fully deterministic. Tiers outside the declared
// range route as fast.
func FallbackChain(preferred CostTier) []CostTier {
	if !preferred.Valid() {
		preferred = TierFast
	}
	chain := make([]CostTier, 0, len(AllTiers()))
	chain = append(chain, preferred)
	for _, tier := range AllTiers() {
		if tier != preferred {
			chain = append(chain, tier)
		}
	}
	return chain
}

// RouterOptions configures optional router collaborators.
type RouterOptions struct {
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// Router drives completion requests through the tier fallback chain.
// It owns no retry logic: a provider that returns an error has already
// spent its own retry budget, so the router moves straight to the next
// registered tier. Unregistered tiers are skipped without recording an
// error.
type Router struct {
	registry *TierRegistry
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewRouter creates a Router over the given registry. opts may be nil.
func NewRouter(registry *TierRegistry, opts *RouterOptions) *Router {
	if opts == nil {
		opts = &RouterOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		registry: registry,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// Registry exposes the underlying tier registry, mainly so callers can
// bind extra providers before first use.
func (r *Router) Registry() *TierRegistry { return r.registry }

// Complete walks the fallback chain built from req.PreferredTier and
// returns the first successful completion. When every registered tier
// fails, the returned *RouteError aggregates the attempt errors in chain
// order. When the chain contained no registered provider at all, the
// result is ErrNoProviders.
func (r *Router) Complete(ctx context.Context, req *CompletionRequest) (*Completion, error) {
	requestID := uuid.NewString()
	chain := FallbackChain(req.PreferredTier)
	logger := r.logger.With(zap.String("request_id", requestID))
	start := time.Now()

	ctx, span := r.metrics.StartRoute(ctx, observability.RouteAttrs{
		RequestID: requestID,
		Preferred: req.PreferredTier.String(),
	})

	var errs []error
	for _, tier := range chain {
		p, ok := r.registry.Get(tier)
		if !ok {
			logger.Debug("tier not registered, skipping",
				zap.Stringer("tier", tier))
			continue
		}

		res, err := p.Complete(ctx, req)
		if err == nil {
			observeRouteRequest(tier, p.Name(), outcomeSuccess)
			promptTokens, completionTokens := usageForMetrics(req, res)
			r.metrics.EndRoute(ctx, span, observability.RouteResult{
				Status:           "success",
				Tier:             tier.String(),
				Provider:         p.Name(),
				Fallbacks:        len(errs),
				Duration:         time.Since(start),
				TokensPrompt:     promptTokens,
				TokensCompletion: completionTokens,
			})
			logger.Debug("completion served",
				zap.Stringer("tier", tier),
				zap.String("provider", p.Name()),
				zap.Duration("duration", time.Since(start)))
			return res, nil
		}

		errs = append(errs, attemptError(tier, p.Name(), err))
		observeRouteRequest(tier, p.Name(), outcomeFailure)
		observeFallback(tier, p.Name())
		r.metrics.AddFallback(ctx, tier.String(), p.Name())
		logger.Warn("provider failed, falling through",
			zap.Stringer("tier", tier),
			zap.String("provider", p.Name()),
			zap.Error(err))

		// A dead context makes every remaining attempt fail on arrival.
		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		r.metrics.EndRoute(ctx, span, observability.RouteResult{
			Status:   "no_providers",
			Duration: time.Since(start),
		})
		logger.Error("no providers registered for any tier in chain",
			zap.Stringer("preferred", req.PreferredTier))
		return nil, ErrNoProviders
	}

	r.metrics.EndRoute(ctx, span, observability.RouteResult{
		Status:    "exhausted",
		Fallbacks: len(errs),
		Duration:  time.Since(start),
	})
	logger.Error("fallback chain exhausted",
		zap.Stringer("preferred", req.PreferredTier),
		zap.Int("attempts", len(errs)))
	return nil, &RouteError{Errs: errs}
}

// StreamingProvider returns the provider streaming consumers should use:
// the standard tier when registered and stream-capable, else the premium
// tier under the same test. Streaming has no fallback chain; callers get
// exactly one vendor or none. The fast tier is never considered.
func (r *Router) StreamingProvider() (StreamingProvider, bool) {
	for _, tier := range []CostTier{TierStandard, TierPremium} {
		p, ok := r.registry.Get(tier)
		if !ok {
			continue
		}
		sp, ok := p.(StreamingProvider)
		if ok && p.Capabilities().Streaming {
			return sp, true
		}
	}
	return nil, false
}

// usageForMetrics returns the token counts fed to the usage histograms.
// Vendors occasionally omit the usage payload; the histograms then get a
// tokenizer estimate instead of zeros. The completion handed back to the
// caller is never touched.
func usageForMetrics(req *CompletionRequest, res *Completion) (prompt, completion int) {
	if res.Usage.TotalTokens > 0 {
		return res.Usage.PromptTokens, res.Usage.CompletionTokens
	}
	tok := tokenizer.ForModelOrEstimator(res.Model)
	prompt, _ = tokenizer.CountPrompt(tok, req.SystemPrompt, req.UserPrompt)
	completion, _ = tok.CountTokens(res.Text)
	return prompt, completion
}

// HealthCheck probes every registered provider concurrently and returns
// the per-tier results. The report lives only in process memory.
func (r *Router) HealthCheck(ctx context.Context) map[CostTier]*HealthStatus {
	var mu sync.Mutex
	out := make(map[CostTier]*HealthStatus)

	g, ctx := errgroup.WithContext(ctx)
	for _, tier := range r.registry.Tiers() {
		p, ok := r.registry.Get(tier)
		if !ok {
			continue
		}
		g.Go(func() error {
			st, err := p.HealthCheck(ctx)
			if err != nil {
				st = &HealthStatus{Healthy: false, Err: err.Error()}
			}
			observeProviderHealth(p.Name(), st)
			mu.Lock()
			out[tier] = st
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
