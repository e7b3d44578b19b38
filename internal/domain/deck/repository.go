package deck

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for deck and deck stock data access
type Repository interface {
	CreateDeck(ctx context.Context, d *Deck) error
	GetDeck(ctx context.Context, id uuid.UUID) (*Deck, error)
	ListDecksByOwner(ctx context.Context, ownerID string) ([]*Deck, error)
	CountDecksByOwner(ctx context.Context, ownerID string) (int, error)
	UpdateDeck(ctx context.Context, d *Deck) error

	// DeleteDeckCascade removes all child stocks and then the deck inside one
	// transaction, so no orphaned stocks are visible even transiently.
	DeleteDeckCascade(ctx context.Context, id uuid.UUID) error

	CreateStock(ctx context.Context, s *Stock) error
	GetStock(ctx context.Context, deckID uuid.UUID, symbol string) (*Stock, error)
	ListStocks(ctx context.Context, deckID uuid.UUID) ([]*Stock, error)
	CountStocks(ctx context.Context, deckID uuid.UUID) (int, error)
	UpdateStock(ctx context.Context, s *Stock) error
	DeleteStock(ctx context.Context, deckID uuid.UUID, symbol string) error
	StockExists(ctx context.Context, deckID uuid.UUID, symbol string) (bool, error)

	// ListStaleStocks returns non-archived stocks whose snapshot is missing
	// or older than the cutoff, oldest first
	ListStaleStocks(ctx context.Context, olderThan time.Time, limit int) ([]*Stock, error)
}
