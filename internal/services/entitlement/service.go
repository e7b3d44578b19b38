package entitlement

import (
	"context"

	"hermes/internal/domain/deck"
	"hermes/internal/domain/entitlement"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Service answers entitlement questions for the rest of the system: profile
// resolution, feature gates and current usage versus limits.
type Service struct {
	table *entitlement.Table
	repo  deck.Repository
	log   *logger.Logger
}

// NewService creates a new entitlement service
func NewService(table *entitlement.Table, repo deck.Repository, log *logger.Logger) *Service {
	return &Service{
		table: table,
		repo:  repo,
		log:   log.With("service", "entitlement"),
	}
}

// Profile resolves the profile for a tier
func (s *Service) Profile(tier entitlement.Tier) (entitlement.Profile, error) {
	return s.table.Resolve(tier)
}

// HasFeature reports whether a tier enables a feature
func (s *Service) HasFeature(tier entitlement.Tier, flag entitlement.FeatureFlag) bool {
	return s.table.HasFeature(tier, flag)
}

// RequireFeature fails with ErrFeatureDisabled when the tier lacks a feature
func (s *Service) RequireFeature(tier entitlement.Tier, flag entitlement.FeatureFlag) error {
	if !s.table.HasFeature(tier, flag) {
		return errors.Wrapf(errors.ErrFeatureDisabled, "feature %s, tier %s", flag, tier)
	}
	return nil
}

// ClampSearchLimit caps a requested result count to the tier's search limit.
// Non-positive requests get the full tier allowance.
func (s *Service) ClampSearchLimit(tier entitlement.Tier, requested int) (int, error) {
	profile, err := s.table.Resolve(tier)
	if err != nil {
		return 0, err
	}

	if profile.SearchResultLimit.IsUnlimited() {
		if requested <= 0 {
			return 50, nil // sane page size when the tier itself is unbounded
		}
		return requested, nil
	}

	max := profile.SearchResultLimit.Value()
	if requested <= 0 || requested > max {
		return max, nil
	}
	return requested, nil
}

// ResourceUsage describes consumption of one limited resource
type ResourceUsage struct {
	Used       int
	Limit      entitlement.Limit
	Percentage float64
}

// Usage reports a user's current deck consumption against their tier limits
type Usage struct {
	Tier  entitlement.Tier
	Decks ResourceUsage
}

// Usage computes current usage versus limits for a user
func (s *Service) Usage(ctx context.Context, ownerID string, tier entitlement.Tier) (*Usage, error) {
	profile, err := s.table.Resolve(tier)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountDecksByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count decks")
	}

	return &Usage{
		Tier: tier,
		Decks: ResourceUsage{
			Used:       count,
			Limit:      profile.MaxDecks,
			Percentage: usagePercentage(count, profile.MaxDecks),
		},
	}, nil
}

func usagePercentage(used int, limit entitlement.Limit) float64 {
	if limit.IsUnlimited() || limit.Value() == 0 {
		return 0
	}
	return float64(used) / float64(limit.Value()) * 100
}
