package deck

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hermes/internal/domain/deck"
	"hermes/internal/domain/entitlement"
	"hermes/internal/domain/quote"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

const (
	// lockTTL bounds how long a crashed mutation can hold an aggregate lock
	lockTTL = 5 * time.Second

	// refreshTimeout bounds the detached quote refresh spawned by AddStock
	refreshTimeout = 10 * time.Second
)

// Locker serializes mutations on one aggregate so two concurrent adds cannot
// both pass the count check and jointly overshoot a limit
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// StrategyNotifier tells the external strategy engine a symbol+strategy pair
// is active. Best-effort: failures are logged, never rolled back.
type StrategyNotifier interface {
	Activate(ctx context.Context, strategyID, symbol string) error
}

// NotificationSink records user-facing notifications. Best-effort.
type NotificationSink interface {
	LimitReached(ctx context.Context, userID, resource string, current, max int) error
	StrategyActivated(ctx context.Context, userID, symbol, strategyID string) error
	DeckDeleted(ctx context.Context, userID, deckName string, removedStocks int) error
}

// Service is the sole authority for mutating decks and their stocks. Every
// mutation takes the acting user's resolved tier as an explicit input and
// re-validates entitlement limits at the moment of mutation.
type Service struct {
	repo          deck.Repository
	entitlements  *entitlement.Table
	gateway       quote.Gateway
	strategies    StrategyNotifier
	notifications NotificationSink
	locker        Locker
	log           *logger.Logger
}

// NewService creates a new deck service
func NewService(
	repo deck.Repository,
	entitlements *entitlement.Table,
	gateway quote.Gateway,
	strategies StrategyNotifier,
	notifications NotificationSink,
	locker Locker,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:          repo,
		entitlements:  entitlements,
		gateway:       gateway,
		strategies:    strategies,
		notifications: notifications,
		locker:        locker,
		log:           log.With("service", "deck"),
	}
}

// CreateDeckInput carries the user-provided fields for a new deck
type CreateDeckInput struct {
	Name        string
	Type        deck.Type
	Description string
	IsPublic    bool
	Settings    json.RawMessage
}

// StockMeta carries optional metadata attached when adding a stock
type StockMeta struct {
	Notes        *string
	TargetPrice  *decimal.Decimal
	StopLoss     *decimal.Decimal
	PositionSize *decimal.Decimal
	EntryPrice   *decimal.Decimal
	Tags         []string
}

// UpdateStockPatch is a partial update; nil fields are left unchanged
type UpdateStockPatch struct {
	Notes        *string
	TargetPrice  *decimal.Decimal
	StopLoss     *decimal.Decimal
	PositionSize *decimal.Decimal
	EntryPrice   *decimal.Decimal
	Tags         *[]string
	Status       *deck.Status
}

// CreateDeck creates a deck after re-checking the owner's deck count against
// the tier limit under the owner lock
func (s *Service) CreateDeck(ctx context.Context, ownerID string, tier entitlement.Tier, input CreateDeckInput) (*deck.Deck, error) {
	profile, err := s.entitlements.Resolve(tier)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "must not be empty", input.Name)
	}

	deckType := input.Type
	if deckType == "" {
		deckType = deck.TypeWatchlist
	}
	if !deckType.Valid() {
		return nil, errors.NewValidationError("type", "unknown deck type", input.Type)
	}

	if input.IsPublic && !profile.HasFeature(entitlement.FeaturePublicDecks) {
		return nil, errors.Wrapf(errors.ErrFeatureDisabled, "feature %s, tier %s",
			entitlement.FeaturePublicDecks, tier)
	}

	unlock, err := s.acquire(ctx, "owner-decks:"+ownerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	count, err := s.repo.CountDecksByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count decks")
	}

	if !profile.MaxDecks.Allows(count) {
		s.notifyLimit(ctx, ownerID, "decks", count, profile.MaxDecks.Value())
		return nil, errors.NewLimitExceeded("decks", tier.String(), count, profile.MaxDecks.Value())
	}

	now := time.Now().UTC()
	d := &deck.Deck{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Type:        deckType,
		Description: input.Description,
		IsPublic:    input.IsPublic,
		Settings:    input.Settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateDeck(ctx, d); err != nil {
		return nil, errors.Wrap(err, "failed to create deck")
	}

	s.log.Infow("Deck created",
		"deck_id", d.ID,
		"owner_id", ownerID,
		"tier", tier.String(),
		"type", d.Type,
	)

	return d, nil
}

// AddStock adds a symbol to a deck after re-checking the deck's stock count
// against the tier limit under the deck lock. On success a best-effort quote
// refresh runs asynchronously; its failure never fails the add.
func (s *Service) AddStock(ctx context.Context, deckID uuid.UUID, tier entitlement.Tier, symbol string, meta *StockMeta) (*deck.Stock, error) {
	profile, err := s.entitlements.Resolve(tier)
	if err != nil {
		return nil, err
	}

	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, errors.NewValidationError("symbol", "must not be empty", symbol)
	}

	unlock, err := s.acquire(ctx, "deck:"+deckID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.repo.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.StockExists(ctx, deckID, symbol)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check symbol")
	}
	if exists {
		return nil, errors.ErrDuplicateSymbol
	}

	count, err := s.repo.CountStocks(ctx, deckID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count stocks")
	}

	if !profile.MaxStocksPerDeck.Allows(count) {
		s.notifyLimit(ctx, d.OwnerID, "stocks", count, profile.MaxStocksPerDeck.Value())
		return nil, errors.NewLimitExceeded("stocks", tier.String(), count, profile.MaxStocksPerDeck.Value())
	}

	now := time.Now().UTC()
	st := &deck.Stock{
		DeckID:        deckID,
		Symbol:        symbol,
		Status:        deck.StatusWatching,
		AddedAt:       now,
		LastUpdatedAt: now,
	}
	if meta != nil {
		st.Notes = meta.Notes
		st.TargetPrice = meta.TargetPrice
		st.StopLoss = meta.StopLoss
		st.PositionSize = meta.PositionSize
		st.EntryPrice = meta.EntryPrice
		st.Tags = meta.Tags
	}

	if err := s.repo.CreateStock(ctx, st); err != nil {
		return nil, err
	}

	s.log.Infow("Stock added to deck",
		"deck_id", deckID,
		"symbol", symbol,
		"tier", tier.String(),
	)

	// Detached from the request context: the caller's response must not wait
	// on the quote provider.
	go s.asyncRefresh(deckID, symbol)

	return st, nil
}

// ApplyStrategy appends a strategy id to a stock after re-checking the tier's
// strategies-per-stock limit. The first applied strategy moves the stock from
// watching to strategy_applied.
func (s *Service) ApplyStrategy(ctx context.Context, deckID uuid.UUID, symbol string, tier entitlement.Tier, strategyID string) (*deck.Stock, error) {
	profile, err := s.entitlements.Resolve(tier)
	if err != nil {
		return nil, err
	}

	strategyID = strings.TrimSpace(strategyID)
	if strategyID == "" {
		return nil, errors.NewValidationError("strategy_id", "must not be empty", strategyID)
	}
	symbol = normalizeSymbol(symbol)

	unlock, err := s.acquire(ctx, "deck:"+deckID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.repo.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	st, err := s.repo.GetStock(ctx, deckID, symbol)
	if err != nil {
		return nil, err
	}

	if st.HasStrategy(strategyID) {
		return nil, errors.ErrDuplicateStrategy
	}

	applied := len(st.StrategyIDs)
	if !profile.MaxStrategiesPerStock.Allows(applied) {
		s.notifyLimit(ctx, d.OwnerID, "strategies", applied, profile.MaxStrategiesPerStock.Value())
		return nil, errors.NewLimitExceeded("strategies", tier.String(), applied, profile.MaxStrategiesPerStock.Value())
	}

	st.StrategyIDs = append(st.StrategyIDs, strategyID)
	if st.Status == deck.StatusWatching {
		st.Status = deck.StatusStrategyApplied
	}
	st.LastUpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateStock(ctx, st); err != nil {
		return nil, err
	}

	s.log.Infow("Strategy applied",
		"deck_id", deckID,
		"symbol", symbol,
		"strategy_id", strategyID,
		"applied_count", len(st.StrategyIDs),
	)

	// Fire-and-forget: the local state change stands even when the engine is
	// unreachable.
	go s.activateStrategy(strategyID, symbol)

	if err := s.notifications.StrategyActivated(ctx, d.OwnerID, symbol, strategyID); err != nil {
		s.log.Warnw("Failed to record strategy notification", "error", err)
	}

	return st, nil
}

// UpdateStock applies a partial update to a stock's metadata and status.
// No entitlement re-check happens here: data created under a higher tier
// persists after a downgrade until the next add-type operation.
func (s *Service) UpdateStock(ctx context.Context, deckID uuid.UUID, symbol string, patch UpdateStockPatch) (*deck.Stock, error) {
	symbol = normalizeSymbol(symbol)

	st, err := s.repo.GetStock(ctx, deckID, symbol)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		if !st.Status.CanTransitionTo(*patch.Status) {
			return nil, errors.NewValidationError("status",
				"transition not allowed from "+string(st.Status), *patch.Status)
		}
		st.Status = *patch.Status
	}
	if patch.Notes != nil {
		st.Notes = patch.Notes
	}
	if patch.TargetPrice != nil {
		st.TargetPrice = patch.TargetPrice
	}
	if patch.StopLoss != nil {
		st.StopLoss = patch.StopLoss
	}
	if patch.PositionSize != nil {
		st.PositionSize = patch.PositionSize
	}
	if patch.EntryPrice != nil {
		st.EntryPrice = patch.EntryPrice
	}
	if patch.Tags != nil {
		st.Tags = *patch.Tags
	}
	st.LastUpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateStock(ctx, st); err != nil {
		return nil, err
	}

	s.log.Debugw("Stock updated", "deck_id", deckID, "symbol", symbol)

	return st, nil
}

// RemoveStock deletes a stock from a deck. Removing an absent symbol is an
// error, not a no-op.
func (s *Service) RemoveStock(ctx context.Context, deckID uuid.UUID, symbol string) error {
	symbol = normalizeSymbol(symbol)

	unlock, err := s.acquire(ctx, "deck:"+deckID.String())
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.repo.DeleteStock(ctx, deckID, symbol); err != nil {
		return err
	}

	s.log.Infow("Stock removed from deck", "deck_id", deckID, "symbol", symbol)

	return nil
}

// DeleteDeck removes a deck and all of its stocks as one unit
func (s *Service) DeleteDeck(ctx context.Context, deckID uuid.UUID) error {
	unlock, err := s.acquire(ctx, "deck:"+deckID.String())
	if err != nil {
		return err
	}
	defer unlock()

	d, err := s.repo.GetDeck(ctx, deckID)
	if err != nil {
		return err
	}

	removed, err := s.repo.CountStocks(ctx, deckID)
	if err != nil {
		return errors.Wrap(err, "failed to count stocks")
	}

	if err := s.repo.DeleteDeckCascade(ctx, deckID); err != nil {
		return err
	}

	s.log.Infow("Deck deleted",
		"deck_id", deckID,
		"owner_id", d.OwnerID,
		"removed_stocks", removed,
	)

	if err := s.notifications.DeckDeleted(ctx, d.OwnerID, d.Name, removed); err != nil {
		s.log.Warnw("Failed to record deck deletion notification", "error", err)
	}

	return nil
}

// RefreshPerformance refreshes a stock's cached quote synchronously. When the
// provider degrades to a fallback, the stored snapshot stays untouched and
// ErrQuoteStale is returned alongside the unchanged stock.
func (s *Service) RefreshPerformance(ctx context.Context, deckID uuid.UUID, symbol string) (*deck.Stock, error) {
	symbol = normalizeSymbol(symbol)

	st, err := s.repo.GetStock(ctx, deckID, symbol)
	if err != nil {
		return nil, err
	}

	q, err := s.gateway.GetQuote(ctx, symbol)
	if err != nil || q.IsFallback {
		return st, errors.ErrQuoteStale
	}

	applySnapshot(st, q)

	if err := s.repo.UpdateStock(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

// RefreshStaleSnapshots refreshes up to batch stocks whose snapshot is older
// than maxAge. Per-symbol failures are soft; the sweep keeps going. Returns
// how many snapshots were refreshed.
func (s *Service) RefreshStaleSnapshots(ctx context.Context, maxAge time.Duration, batch int) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	stale, err := s.repo.ListStaleStocks(ctx, cutoff, batch)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list stale stocks")
	}

	refreshed := 0
	for _, st := range stale {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if err := s.refreshSnapshot(ctx, st.DeckID, st.Symbol); err != nil {
			s.log.Debugw("Stale snapshot refresh skipped",
				"deck_id", st.DeckID, "symbol", st.Symbol, "reason", err)
			continue
		}
		refreshed++
	}

	return refreshed, nil
}

// GetDeck retrieves a deck by ID
func (s *Service) GetDeck(ctx context.Context, deckID uuid.UUID) (*deck.Deck, error) {
	return s.repo.GetDeck(ctx, deckID)
}

// ListDecks retrieves all decks owned by a user
func (s *Service) ListDecks(ctx context.Context, ownerID string) ([]*deck.Deck, error) {
	return s.repo.ListDecksByOwner(ctx, ownerID)
}

// GetStock retrieves one stock in a deck
func (s *Service) GetStock(ctx context.Context, deckID uuid.UUID, symbol string) (*deck.Stock, error) {
	return s.repo.GetStock(ctx, deckID, normalizeSymbol(symbol))
}

// ListStocks retrieves all stocks in a deck
func (s *Service) ListStocks(ctx context.Context, deckID uuid.UUID) ([]*deck.Stock, error) {
	return s.repo.ListStocks(ctx, deckID)
}

// acquire takes the aggregate lock and returns a release func
func (s *Service) acquire(ctx context.Context, key string) (func(), error) {
	ok, err := s.locker.AcquireLock(ctx, key, lockTTL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire lock")
	}
	if !ok {
		return nil, errors.ErrDeckLocked
	}
	return func() {
		if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), key); err != nil {
			s.log.Warnw("Failed to release lock", "key", key, "error", err)
		}
	}, nil
}

// asyncRefresh runs the post-add quote refresh on a fresh bounded context
func (s *Service) asyncRefresh(deckID uuid.UUID, symbol string) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.refreshSnapshot(ctx, deckID, symbol); err != nil {
		s.log.Debugw("Background quote refresh skipped",
			"deck_id", deckID, "symbol", symbol, "reason", err)
	}
}

// refreshSnapshot fetches a quote and writes it back, re-checking that the
// stock still exists immediately before the write so a concurrent remove or
// deck delete is never resurrected.
func (s *Service) refreshSnapshot(ctx context.Context, deckID uuid.UUID, symbol string) error {
	q, err := s.gateway.GetQuote(ctx, symbol)
	if err != nil {
		return err
	}
	if q.IsFallback {
		return errors.ErrQuoteStale
	}

	exists, err := s.repo.StockExists(ctx, deckID, symbol)
	if err != nil {
		return err
	}
	if !exists {
		return errors.ErrStockNotFound
	}

	st, err := s.repo.GetStock(ctx, deckID, symbol)
	if err != nil {
		return err
	}

	applySnapshot(st, q)

	return s.repo.UpdateStock(ctx, st)
}

// activateStrategy notifies the strategy engine on a fresh bounded context
func (s *Service) activateStrategy(strategyID, symbol string) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.strategies.Activate(ctx, strategyID, symbol); err != nil {
		s.log.Warnw("Strategy engine activation failed",
			"strategy_id", strategyID, "symbol", symbol, "error", err)
	}
}

func (s *Service) notifyLimit(ctx context.Context, userID, resource string, current, max int) {
	if err := s.notifications.LimitReached(ctx, userID, resource, current, max); err != nil {
		s.log.Warnw("Failed to record limit notification", "error", err)
	}
}

// applySnapshot copies quote data onto the stock. ReturnPercent is computed
// only when an entry price was recorded.
func applySnapshot(st *deck.Stock, q *quote.Quote) {
	price := q.Price
	st.CurrentPrice = &price
	asOf := q.AsOf
	st.PriceAsOf = &asOf

	if st.EntryPrice != nil && !st.EntryPrice.IsZero() {
		ret := price.Sub(*st.EntryPrice).
			Div(*st.EntryPrice).
			Mul(decimal.NewFromInt(100)).
			Round(4)
		st.ReturnPercent = &ret
	}

	st.LastUpdatedAt = time.Now().UTC()
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
