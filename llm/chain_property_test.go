package llm

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_FallbackChainIsPermutation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("chain starts at the preferred tier and covers every tier exactly once", prop.ForAll(
		func(preferred int) bool {
			tier := CostTier(preferred)
			chain := FallbackChain(tier)

			if len(chain) != len(AllTiers()) {
				t.Logf("Expected chain length %d, got %d", len(AllTiers()), len(chain))
				return false
			}
			if chain[0] != tier {
				t.Logf("Expected chain to start with %s, got %s", tier, chain[0])
				return false
			}

			seen := make(map[CostTier]int, len(chain))
			for _, ct := range chain {
				seen[ct]++
			}
			for _, ct := range AllTiers() {
				if seen[ct] != 1 {
					t.Logf("Tier %s appears %d times in chain %v", ct, seen[ct], chain)
					return false
				}
			}

			return true
		},
		gen.IntRange(int(TierFast), int(TierPremium)),
	))

	properties.TestingRun(t)
}

func TestProperty_FallbackChainIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("repeated calls return identical chains with ascending remainder", prop.ForAll(
		func(preferred int) bool {
			tier := CostTier(preferred)

			first := FallbackChain(tier)
			second := FallbackChain(tier)

			if len(first) != len(second) {
				t.Logf("Chain lengths differ: %d vs %d", len(first), len(second))
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					t.Logf("Chains diverge at %d: %s vs %s", i, first[i], second[i])
					return false
				}
			}

			// After the preferred head, the remaining tiers keep ascending order.
			rest := first[1:]
			for i := 1; i < len(rest); i++ {
				if rest[i-1] >= rest[i] {
					t.Logf("Remainder not ascending: %v", rest)
					return false
				}
			}

			return true
		},
		gen.IntRange(int(TierFast), int(TierPremium)),
	))

	properties.TestingRun(t)
}

func TestProperty_FallbackChainInvalidTierRoutesAsFast(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("out-of-range tiers fall back to the fast-first chain", prop.ForAll(
		func(raw int) bool {
			tier := CostTier(raw)
			if tier.Valid() {
				return true // only exercising the out-of-range branch here
			}

			chain := FallbackChain(tier)
			if chain[0] != TierFast {
				t.Logf("Expected invalid tier %d to route as fast, chain %v", raw, chain)
				return false
			}
			if len(chain) != len(AllTiers()) {
				t.Logf("Expected full chain for invalid tier, got %v", chain)
				return false
			}

			return true
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}
