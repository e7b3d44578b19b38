package entitlement

// Tier identifies a subscription level. Assigned by the billing system and
// passed explicitly into every mutation; never inferred from storage.
type Tier int

const (
	TierFreemium Tier = iota + 1
	TierStarter
	TierGrowth
	TierTrader
	TierPro
	TierPremium
	TierElite
)

// Valid reports whether the tier is within the defined schedule
func (t Tier) Valid() bool {
	return t >= TierFreemium && t <= TierElite
}

// String returns the tier name
func (t Tier) String() string {
	switch t {
	case TierFreemium:
		return "freemium"
	case TierStarter:
		return "starter"
	case TierGrowth:
		return "growth"
	case TierTrader:
		return "trader"
	case TierPro:
		return "pro"
	case TierPremium:
		return "premium"
	case TierElite:
		return "elite"
	default:
		return "unknown"
	}
}

// AllTiers returns the defined tiers in ascending order
func AllTiers() []Tier {
	return []Tier{
		TierFreemium, TierStarter, TierGrowth, TierTrader,
		TierPro, TierPremium, TierElite,
	}
}
