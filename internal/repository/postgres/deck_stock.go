package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"hermes/internal/domain/deck"
	"hermes/pkg/errors"
)

// CreateStock inserts a new deck stock. The (deck_id, symbol) primary key is
// the last line of defense for symbol uniqueness; the service checks first
// under the deck lock.
func (r *DeckRepository) CreateStock(ctx context.Context, s *deck.Stock) error {
	query := `
		INSERT INTO deck_stocks (
			deck_id, symbol, status,
			notes, target_price, stop_loss, position_size,
			tags, strategy_ids,
			entry_price, current_price, return_percent, price_as_of,
			added_at, last_updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9,
			$10, $11, $12, $13,
			$14, $15
		)`

	_, err := r.db.ExecContext(ctx, query,
		s.DeckID, s.Symbol, s.Status,
		s.Notes, s.TargetPrice, s.StopLoss, s.PositionSize,
		s.Tags, s.StrategyIDs,
		s.EntryPrice, s.CurrentPrice, s.ReturnPercent, s.PriceAsOf,
		s.AddedAt, s.LastUpdatedAt,
	)

	if isUniqueViolation(err) {
		return errors.ErrDuplicateSymbol
	}
	if err != nil {
		return errors.Wrap(err, "failed to create deck stock")
	}

	return nil
}

// GetStock retrieves a stock by deck and symbol
func (r *DeckRepository) GetStock(ctx context.Context, deckID uuid.UUID, symbol string) (*deck.Stock, error) {
	var s deck.Stock

	query := `SELECT * FROM deck_stocks WHERE deck_id = $1 AND symbol = $2`

	err := r.db.GetContext(ctx, &s, query, deckID, symbol)
	if err == sql.ErrNoRows {
		return nil, errors.ErrStockNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get deck stock")
	}

	return &s, nil
}

// ListStocks retrieves all stocks in a deck in insertion order
func (r *DeckRepository) ListStocks(ctx context.Context, deckID uuid.UUID) ([]*deck.Stock, error) {
	var stocks []*deck.Stock

	query := `SELECT * FROM deck_stocks WHERE deck_id = $1 ORDER BY added_at ASC, symbol ASC`

	err := r.db.SelectContext(ctx, &stocks, query, deckID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list deck stocks")
	}

	return stocks, nil
}

// CountStocks returns the number of stocks in a deck
func (r *DeckRepository) CountStocks(ctx context.Context, deckID uuid.UUID) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM deck_stocks WHERE deck_id = $1`

	err := r.db.GetContext(ctx, &count, query, deckID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deck stocks")
	}

	return count, nil
}

// UpdateStock persists stock metadata and snapshot changes
func (r *DeckRepository) UpdateStock(ctx context.Context, s *deck.Stock) error {
	query := `
		UPDATE deck_stocks SET
			status = $3,
			notes = $4,
			target_price = $5,
			stop_loss = $6,
			position_size = $7,
			tags = $8,
			strategy_ids = $9,
			entry_price = $10,
			current_price = $11,
			return_percent = $12,
			price_as_of = $13,
			last_updated_at = NOW()
		WHERE deck_id = $1 AND symbol = $2`

	result, err := r.db.ExecContext(ctx, query,
		s.DeckID, s.Symbol, s.Status,
		s.Notes, s.TargetPrice, s.StopLoss, s.PositionSize,
		s.Tags, s.StrategyIDs,
		s.EntryPrice, s.CurrentPrice, s.ReturnPercent, s.PriceAsOf,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update deck stock")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.ErrStockNotFound
	}

	return nil
}

// DeleteStock removes a stock from a deck. Not idempotent: deleting an absent
// stock is an error the caller surfaces.
func (r *DeckRepository) DeleteStock(ctx context.Context, deckID uuid.UUID, symbol string) error {
	query := `DELETE FROM deck_stocks WHERE deck_id = $1 AND symbol = $2`

	result, err := r.db.ExecContext(ctx, query, deckID, symbol)
	if err != nil {
		return errors.Wrap(err, "failed to delete deck stock")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.ErrStockNotFound
	}

	return nil
}

// ListStaleStocks returns non-archived stocks with a missing or outdated
// snapshot, oldest snapshot first
func (r *DeckRepository) ListStaleStocks(ctx context.Context, olderThan time.Time, limit int) ([]*deck.Stock, error) {
	if limit <= 0 {
		limit = 100 // Default batch size
	}

	var stocks []*deck.Stock

	query := `
		SELECT * FROM deck_stocks
		WHERE status != 'archived'
		  AND (price_as_of IS NULL OR price_as_of < $1)
		ORDER BY price_as_of ASC NULLS FIRST
		LIMIT $2`

	err := r.db.SelectContext(ctx, &stocks, query, olderThan, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stale stocks")
	}

	return stocks, nil
}

// StockExists checks whether a symbol is present in a deck
func (r *DeckRepository) StockExists(ctx context.Context, deckID uuid.UUID, symbol string) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS(
			SELECT 1 FROM deck_stocks
			WHERE deck_id = $1 AND symbol = $2
		)`

	err := r.db.GetContext(ctx, &exists, query, deckID, symbol)
	if err != nil {
		return false, errors.Wrap(err, "failed to check deck stock existence")
	}

	return exists, nil
}
