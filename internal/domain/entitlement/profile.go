package entitlement

// FeatureFlag names a tier-gated capability
type FeatureFlag string

const (
	FeaturePerformanceTracking FeatureFlag = "performance_tracking"
	FeatureRecommendations     FeatureFlag = "recommendations"
	FeatureAdvancedAnalytics   FeatureFlag = "advanced_analytics"
	FeaturePublicDecks         FeatureFlag = "public_decks"
	FeatureCSVExport           FeatureFlag = "csv_export"
	FeaturePriorityRefresh     FeatureFlag = "priority_refresh"
)

// Channel names a notification delivery channel
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
)

// Profile is the resolved limit and feature set for one tier
type Profile struct {
	Tier                  Tier
	MaxDecks              Limit
	MaxStocksPerDeck      Limit
	MaxStrategiesPerStock Limit
	SearchResultLimit     Limit
	Features              map[FeatureFlag]bool
	Channels              []Channel
}

// HasFeature reports whether the profile enables a feature
func (p Profile) HasFeature(flag FeatureFlag) bool {
	return p.Features[flag]
}

// HasChannel reports whether the profile enables a notification channel
func (p Profile) HasChannel(ch Channel) bool {
	for _, c := range p.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

func featureSet(flags ...FeatureFlag) map[FeatureFlag]bool {
	set := make(map[FeatureFlag]bool, len(flags))
	for _, f := range flags {
		set[f] = true
	}
	return set
}
