package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"hermes/internal/domain/notification"
	"hermes/pkg/logger"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

// MockRepository is a mock for notification.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestService_Notify(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, testLogger())

	var captured *notification.Notification
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*notification.Notification")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*notification.Notification)
		}).
		Return(nil)

	err := svc.Notify(context.Background(), "user-1", notification.TypeQuoteStale, "Stale data", "Quotes are delayed.")

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, captured.ID)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, notification.TypeQuoteStale, captured.Type)
	assert.False(t, captured.IsRead)
	assert.False(t, captured.CreatedAt.IsZero())
}

func TestService_LimitReached(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, testLogger())

	var captured *notification.Notification
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*notification.Notification")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*notification.Notification)
		}).
		Return(nil)

	err := svc.LimitReached(context.Background(), "user-1", "decks", 1, 1)

	assert.NoError(t, err)
	assert.Equal(t, notification.TypeLimitWarning, captured.Type)
	assert.Contains(t, captured.Message, "decks")
	assert.Contains(t, captured.Message, "Upgrade")
}

func TestService_DeckDeleted(t *testing.T) {
	tests := []struct {
		name    string
		removed int
		want    string
	}{
		{name: "several stocks", removed: 3, want: `Deck "Tech Picks" and its 3 stocks were removed.`},
		{name: "single stock", removed: 1, want: `Deck "Tech Picks" and its 1 stock was removed.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			svc := NewService(mockRepo, testLogger())

			var captured *notification.Notification
			mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*notification.Notification")).
				Run(func(args mock.Arguments) {
					captured = args.Get(1).(*notification.Notification)
				}).
				Return(nil)

			err := svc.DeckDeleted(context.Background(), "user-1", "Tech Picks", tt.removed)

			assert.NoError(t, err)
			assert.Equal(t, notification.TypeDeckDeleted, captured.Type)
			assert.Equal(t, tt.want, captured.Message)
		})
	}
}

func TestService_StrategyActivated(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, testLogger())

	var captured *notification.Notification
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*notification.Notification")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*notification.Notification)
		}).
		Return(nil)

	err := svc.StrategyActivated(context.Background(), "user-1", "AAPL", "momentum-v2")

	assert.NoError(t, err)
	assert.Equal(t, notification.TypeStrategyActivated, captured.Type)
	assert.Contains(t, captured.Message, "momentum-v2")
	assert.Contains(t, captured.Message, "AAPL")
}

func TestService_UnreadCount(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, testLogger())

	mockRepo.On("CountUnread", mock.Anything, "user-1").Return(7, nil)

	count, err := svc.UnreadCount(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, 7, count)
}
