package llm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierRegistryRegisterAndGet(t *testing.T) {
	reg := NewTierRegistry()

	_, ok := reg.Get(TierFast)
	assert.False(t, ok)

	fast := &fakeProvider{name: "groq", tier: TierFast}
	reg.Register(TierFast, fast)

	got, ok := reg.Get(TierFast)
	require.True(t, ok)
	assert.Same(t, fast, got.(*fakeProvider))
	assert.Equal(t, 1, reg.Len())
}

func TestTierRegistryReplaceBinding(t *testing.T) {
	reg := NewTierRegistry()
	reg.Register(TierStandard, &fakeProvider{name: "openai", tier: TierStandard})

	replacement := &fakeProvider{name: "openai-eu", tier: TierStandard}
	reg.Register(TierStandard, replacement)

	got, ok := reg.Get(TierStandard)
	require.True(t, ok)
	assert.Equal(t, "openai-eu", got.Name())
	assert.Equal(t, 1, reg.Len())
}

func TestTierRegistryTiersAscending(t *testing.T) {
	reg := NewTierRegistry()
	reg.Register(TierPremium, &fakeProvider{name: "anthropic", tier: TierPremium})
	reg.Register(TierFast, &fakeProvider{name: "groq", tier: TierFast})
	reg.Register(TierStandard, &fakeProvider{name: "openai", tier: TierStandard})

	assert.Equal(t, []CostTier{TierFast, TierStandard, TierPremium}, reg.Tiers())
}

func TestTierRegistryUnregister(t *testing.T) {
	reg := NewTierRegistry()
	reg.Register(TierFast, &fakeProvider{name: "groq", tier: TierFast})
	reg.Unregister(TierFast)

	_, ok := reg.Get(TierFast)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())

	// Unregistering an unbound tier is a no-op.
	reg.Unregister(TierPremium)
}

func TestTierRegistrySameInstanceUnderSeveralTiers(t *testing.T) {
	reg := NewTierRegistry()
	shared := &fakeProvider{name: "shared", tier: TierFast}

	reg.Register(TierFast, shared)
	reg.Register(TierPremium, shared)

	fast, _ := reg.Get(TierFast)
	premium, _ := reg.Get(TierPremium)
	assert.Same(t, fast.(*fakeProvider), premium.(*fakeProvider))
	assert.Equal(t, 2, reg.Len())
}

func TestTierRegistryConcurrentAccess(t *testing.T) {
	reg := NewTierRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			tier := CostTier(n % 3)
			reg.Register(tier, &fakeProvider{name: tier.String(), tier: tier})
		}(i)
		go func(n int) {
			defer wg.Done()
			reg.Get(CostTier(n % 3))
			reg.Tiers()
			reg.Len()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, reg.Len())
}
