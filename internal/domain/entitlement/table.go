package entitlement

import (
	"hermes/pkg/errors"
)

// Table maps tiers to their profiles. Built once at startup and injected;
// read-only afterwards, so concurrent lookups need no synchronization.
// Tier definitions change only via a versioned redeploy.
type Table struct {
	profiles map[Tier]Profile
}

// NewTable builds a table from the given profiles
func NewTable(profiles ...Profile) *Table {
	byTier := make(map[Tier]Profile, len(profiles))
	for _, p := range profiles {
		byTier[p.Tier] = p
	}
	return &Table{profiles: byTier}
}

// Resolve returns the profile for a tier. Unknown tiers fail loudly instead
// of falling back to a default: silent defaulting would mask billing bugs.
func (t *Table) Resolve(tier Tier) (Profile, error) {
	profile, ok := t.profiles[tier]
	if !ok {
		return Profile{}, errors.Wrapf(errors.ErrUnknownTier, "tier %d", tier)
	}
	return profile, nil
}

// HasFeature reports whether a tier enables a feature. Unknown tiers have no
// features.
func (t *Table) HasFeature(tier Tier, flag FeatureFlag) bool {
	profile, ok := t.profiles[tier]
	if !ok {
		return false
	}
	return profile.HasFeature(flag)
}

// DefaultTable returns the production tier schedule. Every numeric limit is
// non-decreasing as tiers ascend; the monotonicity test keeps it that way.
func DefaultTable() *Table {
	return NewTable(
		Profile{
			Tier:                  TierFreemium,
			MaxDecks:              Bounded(1),
			MaxStocksPerDeck:      Bounded(3),
			MaxStrategiesPerStock: Bounded(1),
			SearchResultLimit:     Bounded(5),
			Features:              featureSet(),
			Channels:              []Channel{ChannelInApp},
		},
		Profile{
			Tier:                  TierStarter,
			MaxDecks:              Bounded(3),
			MaxStocksPerDeck:      Bounded(10),
			MaxStrategiesPerStock: Bounded(2),
			SearchResultLimit:     Bounded(10),
			Features:              featureSet(FeaturePerformanceTracking),
			Channels:              []Channel{ChannelInApp, ChannelEmail},
		},
		Profile{
			Tier:                  TierGrowth,
			MaxDecks:              Bounded(5),
			MaxStocksPerDeck:      Bounded(25),
			MaxStrategiesPerStock: Bounded(3),
			SearchResultLimit:     Bounded(20),
			Features: featureSet(
				FeaturePerformanceTracking,
				FeatureRecommendations,
			),
			Channels: []Channel{ChannelInApp, ChannelEmail},
		},
		Profile{
			Tier:                  TierTrader,
			MaxDecks:              Bounded(10),
			MaxStocksPerDeck:      Bounded(50),
			MaxStrategiesPerStock: Bounded(5),
			SearchResultLimit:     Bounded(30),
			Features: featureSet(
				FeaturePerformanceTracking,
				FeatureRecommendations,
				FeatureAdvancedAnalytics,
			),
			Channels: []Channel{ChannelInApp, ChannelEmail, ChannelPush},
		},
		Profile{
			Tier:                  TierPro,
			MaxDecks:              Bounded(25),
			MaxStocksPerDeck:      Bounded(100),
			MaxStrategiesPerStock: Bounded(10),
			SearchResultLimit:     Bounded(50),
			Features: featureSet(
				FeaturePerformanceTracking,
				FeatureRecommendations,
				FeatureAdvancedAnalytics,
				FeaturePublicDecks,
				FeatureCSVExport,
			),
			Channels: []Channel{ChannelInApp, ChannelEmail, ChannelPush},
		},
		Profile{
			Tier:                  TierPremium,
			MaxDecks:              Bounded(50),
			MaxStocksPerDeck:      Unlimited(),
			MaxStrategiesPerStock: Bounded(20),
			SearchResultLimit:     Bounded(100),
			Features: featureSet(
				FeaturePerformanceTracking,
				FeatureRecommendations,
				FeatureAdvancedAnalytics,
				FeaturePublicDecks,
				FeatureCSVExport,
				FeaturePriorityRefresh,
			),
			Channels: []Channel{ChannelInApp, ChannelEmail, ChannelPush},
		},
		Profile{
			Tier:                  TierElite,
			MaxDecks:              Unlimited(),
			MaxStocksPerDeck:      Unlimited(),
			MaxStrategiesPerStock: Unlimited(),
			SearchResultLimit:     Unlimited(),
			Features: featureSet(
				FeaturePerformanceTracking,
				FeatureRecommendations,
				FeatureAdvancedAnalytics,
				FeaturePublicDecks,
				FeatureCSVExport,
				FeaturePriorityRefresh,
			),
			Channels: []Channel{ChannelInApp, ChannelEmail, ChannelPush, ChannelSMS},
		},
	)
}
