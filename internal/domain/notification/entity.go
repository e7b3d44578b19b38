package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a user-facing message rendered by the UI layer.
// The shape is consumed downstream and must stay stable.
type Notification struct {
	ID        uuid.UUID `db:"id"`
	UserID    string    `db:"user_id"`
	Type      Type      `db:"type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

// Type categorizes a notification
type Type string

const (
	TypeLimitWarning      Type = "limit_warning"
	TypeStrategyActivated Type = "strategy_activated"
	TypeDeckDeleted       Type = "deck_deleted"
	TypeQuoteStale        Type = "quote_stale"
)
