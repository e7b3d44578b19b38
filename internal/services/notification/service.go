package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"hermes/internal/domain/notification"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Service creates and manages user notifications
type Service struct {
	repo notification.Repository
	log  *logger.Logger
}

// NewService creates a new notification service
func NewService(repo notification.Repository, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("service", "notification"),
	}
}

// Notify records a notification for a user
func (s *Service) Notify(ctx context.Context, userID string, typ notification.Type, title, message string) error {
	n := &notification.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return errors.Wrap(err, "failed to create notification")
	}

	s.log.Debugw("Notification created", "user_id", userID, "type", typ)

	return nil
}

// LimitReached records a notification telling the user which tier limit
// blocked their last mutation
func (s *Service) LimitReached(ctx context.Context, userID, resource string, current, max int) error {
	return s.Notify(ctx, userID, notification.TypeLimitWarning,
		"Plan limit reached",
		fmt.Sprintf("You have used all %d of your %s. Upgrade your plan to add more.",
			max, resource),
	)
}

// StrategyActivated records a notification for a newly applied strategy
func (s *Service) StrategyActivated(ctx context.Context, userID, symbol, strategyID string) error {
	return s.Notify(ctx, userID, notification.TypeStrategyActivated,
		"Strategy activated",
		fmt.Sprintf("Strategy %s is now active on %s.", strategyID, symbol),
	)
}

// DeckDeleted records a notification for a cascading deck deletion
func (s *Service) DeckDeleted(ctx context.Context, userID, deckName string, removedStocks int) error {
	return s.Notify(ctx, userID, notification.TypeDeckDeleted,
		"Deck deleted",
		fmt.Sprintf("Deck %q and its %s %s removed.",
			deckName,
			humanize.Comma(int64(removedStocks)),
			pluralize(removedStocks, "stock was", "stocks were")),
	)
}

// ListByUser retrieves a user's notifications, newest first
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

// MarkRead marks one notification as read
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks all of a user's notifications as read
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// UnreadCount returns the number of unread notifications
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
