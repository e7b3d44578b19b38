package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hermes/pkg/errors"
)

func TestTable_Resolve(t *testing.T) {
	table := DefaultTable()

	for _, tier := range AllTiers() {
		profile, err := table.Resolve(tier)
		assert.NoError(t, err)
		assert.Equal(t, tier, profile.Tier)
	}
}

func TestTable_Resolve_UnknownTier(t *testing.T) {
	table := DefaultTable()

	_, err := table.Resolve(Tier(0))
	assert.ErrorIs(t, err, errors.ErrUnknownTier)

	_, err = table.Resolve(Tier(8))
	assert.ErrorIs(t, err, errors.ErrUnknownTier)
}

func TestDefaultTable_FreemiumBaseline(t *testing.T) {
	profile, err := DefaultTable().Resolve(TierFreemium)
	assert.NoError(t, err)

	assert.Equal(t, Bounded(1), profile.MaxDecks)
	assert.Equal(t, Bounded(3), profile.MaxStocksPerDeck)
	assert.Equal(t, Bounded(1), profile.MaxStrategiesPerStock)
	assert.Equal(t, Bounded(5), profile.SearchResultLimit)
	assert.False(t, profile.HasFeature(FeaturePerformanceTracking))
	assert.False(t, profile.HasFeature(FeatureRecommendations))
	assert.True(t, profile.HasChannel(ChannelInApp))
	assert.False(t, profile.HasChannel(ChannelEmail))
}

func TestDefaultTable_EliteUnlimited(t *testing.T) {
	profile, err := DefaultTable().Resolve(TierElite)
	assert.NoError(t, err)

	assert.True(t, profile.MaxDecks.IsUnlimited())
	assert.True(t, profile.MaxStocksPerDeck.IsUnlimited())
	assert.True(t, profile.MaxStrategiesPerStock.IsUnlimited())
	assert.True(t, profile.SearchResultLimit.IsUnlimited())
}

// Every numeric limit must be non-decreasing as tiers ascend, and no feature
// granted at a tier may disappear at a higher one. Upgrading never takes
// anything away.
func TestDefaultTable_Monotonic(t *testing.T) {
	table := DefaultTable()
	tiers := AllTiers()

	for i := 1; i < len(tiers); i++ {
		lower, err := table.Resolve(tiers[i-1])
		assert.NoError(t, err)
		higher, err := table.Resolve(tiers[i])
		assert.NoError(t, err)

		assert.True(t, higher.MaxDecks.AtLeast(lower.MaxDecks),
			"MaxDecks shrinks from %s to %s", lower.Tier, higher.Tier)
		assert.True(t, higher.MaxStocksPerDeck.AtLeast(lower.MaxStocksPerDeck),
			"MaxStocksPerDeck shrinks from %s to %s", lower.Tier, higher.Tier)
		assert.True(t, higher.MaxStrategiesPerStock.AtLeast(lower.MaxStrategiesPerStock),
			"MaxStrategiesPerStock shrinks from %s to %s", lower.Tier, higher.Tier)
		assert.True(t, higher.SearchResultLimit.AtLeast(lower.SearchResultLimit),
			"SearchResultLimit shrinks from %s to %s", lower.Tier, higher.Tier)

		for flag, enabled := range lower.Features {
			if enabled {
				assert.True(t, higher.HasFeature(flag),
					"feature %s lost from %s to %s", flag, lower.Tier, higher.Tier)
			}
		}

		for _, ch := range lower.Channels {
			assert.True(t, higher.HasChannel(ch),
				"channel %s lost from %s to %s", ch, lower.Tier, higher.Tier)
		}
	}
}

func TestTable_HasFeature(t *testing.T) {
	table := DefaultTable()

	assert.True(t, table.HasFeature(TierGrowth, FeatureRecommendations))
	assert.False(t, table.HasFeature(TierStarter, FeatureRecommendations))
	assert.False(t, table.HasFeature(Tier(42), FeaturePerformanceTracking))
}
