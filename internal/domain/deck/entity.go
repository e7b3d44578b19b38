package deck

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Deck is a named, owned collection of stock entries
type Deck struct {
	ID          uuid.UUID       `db:"id"`
	OwnerID     string          `db:"owner_id"`
	Name        string          `db:"name"`
	Type        Type            `db:"type"`
	Description string          `db:"description"`
	IsPublic    bool            `db:"is_public"`
	Settings    json.RawMessage `db:"settings"` // free-form UI settings blob

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Type categorizes a deck
type Type string

const (
	TypeWatchlist Type = "watchlist"
	TypePortfolio Type = "portfolio"
	TypeStrategy  Type = "strategy"
	TypeResearch  Type = "research"
	TypeCustom    Type = "custom"
)

// Valid checks if the deck type is valid
func (t Type) Valid() bool {
	switch t {
	case TypeWatchlist, TypePortfolio, TypeStrategy, TypeResearch, TypeCustom:
		return true
	}
	return false
}

// Stock is one symbol inside a deck, keyed by (deck_id, symbol).
// Symbol is unique per deck.
type Stock struct {
	DeckID uuid.UUID `db:"deck_id"`
	Symbol string    `db:"symbol"`
	Status Status    `db:"status"`

	Notes        *string          `db:"notes"`
	TargetPrice  *decimal.Decimal `db:"target_price"`
	StopLoss     *decimal.Decimal `db:"stop_loss"`
	PositionSize *decimal.Decimal `db:"position_size"`

	Tags        pq.StringArray `db:"tags"`
	StrategyIDs pq.StringArray `db:"strategy_ids"` // insertion order, no duplicates

	// Cached performance snapshot, refreshed opportunistically
	EntryPrice    *decimal.Decimal `db:"entry_price"`
	CurrentPrice  *decimal.Decimal `db:"current_price"`
	ReturnPercent *decimal.Decimal `db:"return_percent"`
	PriceAsOf     *time.Time       `db:"price_as_of"`

	AddedAt       time.Time `db:"added_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

// HasStrategy reports whether the strategy id is already applied
func (s *Stock) HasStrategy(strategyID string) bool {
	for _, id := range s.StrategyIDs {
		if id == strategyID {
			return true
		}
	}
	return false
}

// Status represents the lifecycle state of a deck stock
type Status string

const (
	StatusWatching        Status = "watching"
	StatusActive          Status = "active"
	StatusStrategyApplied Status = "strategy_applied"
	StatusArchived        Status = "archived"
)

// Valid checks if the status is valid
func (s Status) Valid() bool {
	switch s {
	case StatusWatching, StatusActive, StatusStrategyApplied, StatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether a manual status change is allowed.
// Archived entries can only be reactivated back to watching; everything else
// moves freely between the live states. Active is a manual marker for an
// opened position, never derived from trade execution.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s == StatusArchived {
		return next == StatusWatching
	}
	return true
}
