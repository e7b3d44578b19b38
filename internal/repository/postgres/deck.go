package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"hermes/internal/domain/deck"
	"hermes/pkg/errors"
)

// Compile-time check
var _ deck.Repository = (*DeckRepository)(nil)

// DeckRepository implements deck.Repository using PostgreSQL
type DeckRepository struct {
	db *sqlx.DB
}

// NewDeckRepository creates a new deck repository
func NewDeckRepository(db *sqlx.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

// CreateDeck inserts a new deck
func (r *DeckRepository) CreateDeck(ctx context.Context, d *deck.Deck) error {
	query := `
		INSERT INTO decks (
			id, owner_id, name, type, description,
			is_public, settings, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.OwnerID, d.Name, d.Type, d.Description,
		d.IsPublic, d.Settings, d.CreatedAt, d.UpdatedAt,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create deck")
	}

	return nil
}

// GetDeck retrieves a deck by ID
func (r *DeckRepository) GetDeck(ctx context.Context, id uuid.UUID) (*deck.Deck, error) {
	var d deck.Deck

	query := `SELECT * FROM decks WHERE id = $1`

	err := r.db.GetContext(ctx, &d, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrDeckNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get deck")
	}

	return &d, nil
}

// ListDecksByOwner retrieves all decks owned by a user, newest first
func (r *DeckRepository) ListDecksByOwner(ctx context.Context, ownerID string) ([]*deck.Deck, error) {
	var decks []*deck.Deck

	query := `SELECT * FROM decks WHERE owner_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &decks, query, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list decks")
	}

	return decks, nil
}

// CountDecksByOwner returns the number of decks owned by a user
func (r *DeckRepository) CountDecksByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM decks WHERE owner_id = $1`

	err := r.db.GetContext(ctx, &count, query, ownerID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count decks")
	}

	return count, nil
}

// UpdateDeck updates deck metadata
func (r *DeckRepository) UpdateDeck(ctx context.Context, d *deck.Deck) error {
	query := `
		UPDATE decks SET
			name = $2,
			type = $3,
			description = $4,
			is_public = $5,
			settings = $6,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Type, d.Description, d.IsPublic, d.Settings,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update deck")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.ErrDeckNotFound
	}

	return nil
}

// DeleteDeckCascade removes child stocks first, then the deck, inside one
// transaction. No orphaned stocks are visible to other readers at any point.
func (r *DeckRepository) DeleteDeckCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM deck_stocks WHERE deck_id = $1`, id); err != nil {
		return errors.Wrap(err, "failed to delete deck stocks")
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete deck")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.ErrDeckNotFound
	}

	return tx.Commit()
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
