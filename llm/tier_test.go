package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostTierString(t *testing.T) {
	tests := []struct {
		tier CostTier
		want string
	}{
		{TierFast, "fast"},
		{TierStandard, "standard"},
		{TierPremium, "premium"},
		{CostTier(42), "tier(42)"},
		{CostTier(-1), "tier(-1)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tier.String())
		})
	}
}

func TestCostTierValid(t *testing.T) {
	assert.True(t, TierFast.Valid())
	assert.True(t, TierStandard.Valid())
	assert.True(t, TierPremium.Valid())
	assert.False(t, CostTier(-1).Valid())
	assert.False(t, CostTier(3).Valid())
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CostTier
		wantErr bool
	}{
		{name: "fast", input: "fast", want: TierFast},
		{name: "standard", input: "standard", want: TierStandard},
		{name: "premium", input: "premium", want: TierPremium},
		{name: "uppercase", input: "PREMIUM", want: TierPremium},
		{name: "mixed case with spaces", input: "  Standard ", want: TierStandard},
		{name: "unknown", input: "ultra", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTier(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown cost tier")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllTiersReturnsFreshSlice(t *testing.T) {
	first := AllTiers()
	require.Equal(t, []CostTier{TierFast, TierStandard, TierPremium}, first)

	// Mutating the returned slice must not leak into later calls.
	first[0] = TierPremium
	second := AllTiers()
	assert.Equal(t, TierFast, second[0])
}
