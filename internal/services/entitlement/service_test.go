package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"hermes/internal/domain/deck"
	"hermes/internal/domain/entitlement"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

// MockRepository is a mock for deck.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateDeck(ctx context.Context, d *deck.Deck) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockRepository) GetDeck(ctx context.Context, id uuid.UUID) (*deck.Deck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deck.Deck), args.Error(1)
}

func (m *MockRepository) ListDecksByOwner(ctx context.Context, ownerID string) ([]*deck.Deck, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deck.Deck), args.Error(1)
}

func (m *MockRepository) CountDecksByOwner(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UpdateDeck(ctx context.Context, d *deck.Deck) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockRepository) DeleteDeckCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CreateStock(ctx context.Context, s *deck.Stock) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) GetStock(ctx context.Context, deckID uuid.UUID, symbol string) (*deck.Stock, error) {
	args := m.Called(ctx, deckID, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deck.Stock), args.Error(1)
}

func (m *MockRepository) ListStocks(ctx context.Context, deckID uuid.UUID) ([]*deck.Stock, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deck.Stock), args.Error(1)
}

func (m *MockRepository) CountStocks(ctx context.Context, deckID uuid.UUID) (int, error) {
	args := m.Called(ctx, deckID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UpdateStock(ctx context.Context, s *deck.Stock) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) DeleteStock(ctx context.Context, deckID uuid.UUID, symbol string) error {
	args := m.Called(ctx, deckID, symbol)
	return args.Error(0)
}

func (m *MockRepository) StockExists(ctx context.Context, deckID uuid.UUID, symbol string) (bool, error) {
	args := m.Called(ctx, deckID, symbol)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListStaleStocks(ctx context.Context, olderThan time.Time, limit int) ([]*deck.Stock, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deck.Stock), args.Error(1)
}

func newTestService() (*Service, *MockRepository) {
	mockRepo := new(MockRepository)
	return NewService(entitlement.DefaultTable(), mockRepo, testLogger()), mockRepo
}

func TestService_Profile(t *testing.T) {
	svc, _ := newTestService()

	profile, err := svc.Profile(entitlement.TierTrader)
	assert.NoError(t, err)
	assert.Equal(t, entitlement.TierTrader, profile.Tier)

	_, err = svc.Profile(entitlement.Tier(0))
	assert.ErrorIs(t, err, errors.ErrUnknownTier)
}

func TestService_RequireFeature(t *testing.T) {
	svc, _ := newTestService()

	assert.NoError(t, svc.RequireFeature(entitlement.TierPro, entitlement.FeatureCSVExport))
	assert.ErrorIs(t,
		svc.RequireFeature(entitlement.TierFreemium, entitlement.FeatureCSVExport),
		errors.ErrFeatureDisabled)
}

func TestService_ClampSearchLimit(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name      string
		tier      entitlement.Tier
		requested int
		want      int
	}{
		{name: "within limit", tier: entitlement.TierGrowth, requested: 10, want: 10},
		{name: "above limit", tier: entitlement.TierGrowth, requested: 100, want: 20},
		{name: "zero gets full allowance", tier: entitlement.TierGrowth, requested: 0, want: 20},
		{name: "negative gets full allowance", tier: entitlement.TierFreemium, requested: -1, want: 5},
		{name: "unlimited keeps request", tier: entitlement.TierElite, requested: 250, want: 250},
		{name: "unlimited with zero gets default page", tier: entitlement.TierElite, requested: 0, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ClampSearchLimit(tt.tier, tt.requested)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Usage(t *testing.T) {
	svc, mockRepo := newTestService()

	mockRepo.On("CountDecksByOwner", mock.Anything, "user-1").Return(3, nil)

	usage, err := svc.Usage(context.Background(), "user-1", entitlement.TierGrowth)

	assert.NoError(t, err)
	assert.Equal(t, entitlement.TierGrowth, usage.Tier)
	assert.Equal(t, 3, usage.Decks.Used)
	assert.Equal(t, entitlement.Bounded(5), usage.Decks.Limit)
	assert.InDelta(t, 60.0, usage.Decks.Percentage, 0.001)
}

func TestService_Usage_UnlimitedTier(t *testing.T) {
	svc, mockRepo := newTestService()

	mockRepo.On("CountDecksByOwner", mock.Anything, "user-1").Return(400, nil)

	usage, err := svc.Usage(context.Background(), "user-1", entitlement.TierElite)

	assert.NoError(t, err)
	assert.Equal(t, 400, usage.Decks.Used)
	assert.True(t, usage.Decks.Limit.IsUnlimited())
	assert.Equal(t, 0.0, usage.Decks.Percentage)
}
