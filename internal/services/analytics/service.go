package analytics

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hermes/internal/domain/deck"
	"hermes/internal/domain/entitlement"
	"hermes/internal/domain/quote"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Service derives descriptive statistics over stored performance snapshots
// and ranks quote candidates for recommendations. It never fetches fresh
// market data for summaries; freshness is the deck service's job.
type Service struct {
	repo         deck.Repository
	gateway      quote.Gateway
	entitlements *entitlement.Table
	log          *logger.Logger
}

// NewService creates a new analytics service
func NewService(
	repo deck.Repository,
	gateway quote.Gateway,
	entitlements *entitlement.Table,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:         repo,
		gateway:      gateway,
		entitlements: entitlements,
		log:          log.With("service", "analytics"),
	}
}

// Summary holds descriptive statistics over a deck's recorded returns
type Summary struct {
	AverageReturn decimal.Decimal
	BestReturn    decimal.Decimal
	WorstReturn   decimal.Decimal
	TotalReturn   decimal.Decimal
	SampleSize    int
}

// Summarize computes return statistics for a deck. Only stocks with a
// recorded return participate; a nil summary means no data, which is a
// different answer than flat performance.
func (s *Service) Summarize(ctx context.Context, deckID uuid.UUID) (*Summary, error) {
	stocks, err := s.repo.ListStocks(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return summarize(stocks), nil
}

func summarize(stocks []*deck.Stock) *Summary {
	var returns []decimal.Decimal
	for _, st := range stocks {
		if st.ReturnPercent != nil {
			returns = append(returns, *st.ReturnPercent)
		}
	}

	if len(returns) == 0 {
		return nil
	}

	total := decimal.Zero
	best := returns[0]
	worst := returns[0]
	for _, r := range returns {
		total = total.Add(r)
		if r.GreaterThan(best) {
			best = r
		}
		if r.LessThan(worst) {
			worst = r
		}
	}

	return &Summary{
		AverageReturn: total.Div(decimal.NewFromInt(int64(len(returns)))).Round(4),
		BestReturn:    best,
		WorstReturn:   worst,
		TotalReturn:   total,
		SampleSize:    len(returns),
	}
}

// Rank orders candidates by relevance score descending. Candidates already
// present in the deck are dropped; ties break by symbol lexical order so the
// result is deterministic.
func Rank(candidates []*quote.Quote, existingSymbols []string) []*quote.Quote {
	existing := make(map[string]bool, len(existingSymbols))
	for _, sym := range existingSymbols {
		existing[sym] = true
	}

	ranked := make([]*quote.Quote, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || existing[c.Symbol] {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		cmp := score(ranked[i]).Cmp(score(ranked[j]))
		if cmp != 0 {
			return cmp > 0
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	return ranked
}

// score is the relevance of a candidate: magnitude of today's move. Fallback
// quotes carry no signal and sink to the bottom.
func score(q *quote.Quote) decimal.Decimal {
	if q.IsFallback {
		return decimal.NewFromInt(-1)
	}
	return q.ChangePercent.Abs()
}

// Recommend searches the quote provider and ranks results against the deck's
// current holdings. Gated by the recommendations feature; the result count is
// clamped to the tier's search limit.
func (s *Service) Recommend(ctx context.Context, deckID uuid.UUID, tier entitlement.Tier, query string, limit int) ([]*quote.Quote, error) {
	profile, err := s.entitlements.Resolve(tier)
	if err != nil {
		return nil, err
	}

	if !profile.HasFeature(entitlement.FeatureRecommendations) {
		return nil, errors.Wrapf(errors.ErrFeatureDisabled, "feature %s, tier %s",
			entitlement.FeatureRecommendations, tier)
	}

	limit = clamp(limit, profile.SearchResultLimit)

	stocks, err := s.repo.ListStocks(ctx, deckID)
	if err != nil {
		return nil, err
	}
	existing := make([]string, 0, len(stocks))
	for _, st := range stocks {
		existing = append(existing, st.Symbol)
	}

	candidates, err := s.gateway.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	ranked := Rank(candidates, existing)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// TopMovers fetches the day's biggest movers, clamped to the tier's limit
func (s *Service) TopMovers(ctx context.Context, tier entitlement.Tier, limit int) ([]*quote.Quote, error) {
	profile, err := s.entitlements.Resolve(tier)
	if err != nil {
		return nil, err
	}

	return s.gateway.TopMovers(ctx, clamp(limit, profile.SearchResultLimit))
}

func clamp(requested int, limit entitlement.Limit) int {
	if limit.IsUnlimited() {
		if requested <= 0 {
			return 50
		}
		return requested
	}
	if requested <= 0 || requested > limit.Value() {
		return limit.Value()
	}
	return requested
}
