package llm

import (
	"sort"
	"sync"
)

// TierRegistry is a thread-safe mapping from cost tier to provider. The
// router reads it on every request; writes normally happen once, during
// construction, after which the registry is treated as frozen.
//
// Registering one provider instance under several tiers is allowed and
// meaningful: a fallback walk will then try that instance once per tier
// it occupies.
type TierRegistry struct {
	providers map[CostTier]Provider
	mu        sync.RWMutex
}

// NewTierRegistry creates an empty TierRegistry.
func NewTierRegistry() *TierRegistry {
	return &TierRegistry{
		providers: make(map[CostTier]Provider),
	}
}

// Register binds a provider to the given tier.
// If the tier is already bound, the previous provider is replaced.
func (r *TierRegistry) Register(tier CostTier, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[tier] = p
}

// Get retrieves the provider bound to a tier.
func (r *TierRegistry) Get(tier CostTier) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[tier]
	return p, ok
}

// Tiers returns the bound tiers in ascending cost order.
func (r *TierRegistry) Tiers() []CostTier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tiers := make([]CostTier, 0, len(r.providers))
	for tier := range r.providers {
		tiers = append(tiers, tier)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers
}

// Unregister removes the binding for a tier.
func (r *TierRegistry) Unregister(tier CostTier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, tier)
}

// Len returns the number of bound tiers.
func (r *TierRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
