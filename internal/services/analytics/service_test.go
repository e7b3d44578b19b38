package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"hermes/internal/domain/deck"
	"hermes/internal/domain/entitlement"
	"hermes/internal/domain/quote"
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

// MockGateway is a mock for quote.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetQuote(ctx context.Context, symbol string) (*quote.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Quote), args.Error(1)
}

func (m *MockGateway) Search(ctx context.Context, query string, limit int) ([]*quote.Quote, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*quote.Quote), args.Error(1)
}

func (m *MockGateway) TopMovers(ctx context.Context, limit int) ([]*quote.Quote, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*quote.Quote), args.Error(1)
}

func ret(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestService_Summarize(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	svc := NewService(mockRepo, mockGateway, entitlement.DefaultTable(), testLogger())

	deckID := uuid.New()
	stocks := []*deck.Stock{
		{Symbol: "AAPL", ReturnPercent: ret("10")},
		{Symbol: "MSFT", ReturnPercent: ret("-4")},
		{Symbol: "TSLA", ReturnPercent: ret("6")},
		{Symbol: "NVDA"}, // no snapshot yet, excluded
	}
	mockRepo.On("ListStocks", mock.Anything, deckID).Return(stocks, nil)

	summary, err := svc.Summarize(context.Background(), deckID)

	assert.NoError(t, err)
	assert.NotNil(t, summary)
	assert.Equal(t, 3, summary.SampleSize)
	assert.True(t, summary.TotalReturn.Equal(decimal.RequireFromString("12")))
	assert.True(t, summary.AverageReturn.Equal(decimal.RequireFromString("4")))
	assert.True(t, summary.BestReturn.Equal(decimal.RequireFromString("10")))
	assert.True(t, summary.WorstReturn.Equal(decimal.RequireFromString("-4")))
}

// No recorded returns means no summary, which is a different answer than a
// summary of zeros.
func TestService_Summarize_NoData(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	svc := NewService(mockRepo, mockGateway, entitlement.DefaultTable(), testLogger())

	deckID := uuid.New()
	stocks := []*deck.Stock{
		{Symbol: "AAPL"},
		{Symbol: "MSFT"},
	}
	mockRepo.On("ListStocks", mock.Anything, deckID).Return(stocks, nil)

	summary, err := svc.Summarize(context.Background(), deckID)

	assert.NoError(t, err)
	assert.Nil(t, summary)
}

func TestService_Summarize_SingleStock(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	svc := NewService(mockRepo, mockGateway, entitlement.DefaultTable(), testLogger())

	deckID := uuid.New()
	mockRepo.On("ListStocks", mock.Anything, deckID).
		Return([]*deck.Stock{{Symbol: "AAPL", ReturnPercent: ret("-2.5")}}, nil)

	summary, err := svc.Summarize(context.Background(), deckID)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.SampleSize)
	assert.True(t, summary.BestReturn.Equal(decimal.RequireFromString("-2.5")))
	assert.True(t, summary.WorstReturn.Equal(decimal.RequireFromString("-2.5")))
}

func q(symbol, changePercent string) *quote.Quote {
	return &quote.Quote{
		Symbol:        symbol,
		Price:         decimal.RequireFromString("100"),
		ChangePercent: decimal.RequireFromString(changePercent),
		AsOf:          time.Now().UTC(),
	}
}

func TestRank(t *testing.T) {
	candidates := []*quote.Quote{
		q("AAPL", "1.5"),
		q("MSFT", "-3.2"), // biggest magnitude, ranks first
		q("TSLA", "2.0"),
		q("NVDA", "0.5"),
	}

	ranked := Rank(candidates, []string{"TSLA"})

	symbols := make([]string, 0, len(ranked))
	for _, r := range ranked {
		symbols = append(symbols, r.Symbol)
	}
	assert.Equal(t, []string{"MSFT", "AAPL", "NVDA"}, symbols)
}

func TestRank_TieBreaksBySymbol(t *testing.T) {
	candidates := []*quote.Quote{
		q("ZZZZ", "2.0"),
		q("AAAA", "-2.0"),
		q("MMMM", "2.0"),
	}

	ranked := Rank(candidates, nil)

	symbols := []string{ranked[0].Symbol, ranked[1].Symbol, ranked[2].Symbol}
	assert.Equal(t, []string{"AAAA", "MMMM", "ZZZZ"}, symbols)
}

func TestRank_FallbacksSink(t *testing.T) {
	fallback := quote.Fallback("FAIL", time.Now().UTC())
	candidates := []*quote.Quote{
		fallback,
		q("AAPL", "0.1"),
		nil,
	}

	ranked := Rank(candidates, nil)

	assert.Len(t, ranked, 2)
	assert.Equal(t, "AAPL", ranked[0].Symbol)
	assert.Equal(t, "FAIL", ranked[1].Symbol)
}

func TestService_Recommend(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	svc := NewService(mockRepo, mockGateway, entitlement.DefaultTable(), testLogger())

	deckID := uuid.New()
	mockRepo.On("ListStocks", mock.Anything, deckID).
		Return([]*deck.Stock{{Symbol: "AAPL"}}, nil)
	mockGateway.On("Search", mock.Anything, "tech", 5).
		Return([]*quote.Quote{q("AAPL", "3.0"), q("MSFT", "1.0"), q("NVDA", "2.0")}, nil)

	// Growth tier has recommendations; limit 5 clamps to the tier search limit of 20
	result, err := svc.Recommend(context.Background(), deckID, entitlement.TierGrowth, "tech", 5)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "NVDA", result[0].Symbol)
	assert.Equal(t, "MSFT", result[1].Symbol)
}

func TestService_Recommend_FeatureGated(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	svc := NewService(mockRepo, mockGateway, entitlement.DefaultTable(), testLogger())

	_, err := svc.Recommend(context.Background(), uuid.New(), entitlement.TierFreemium, "tech", 5)

	assert.ErrorIs(t, err, errors.ErrFeatureDisabled)
	mockGateway.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_TopMovers_ClampsToTierLimit(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	svc := NewService(mockRepo, mockGateway, entitlement.DefaultTable(), testLogger())

	// Freemium search limit is 5; a request for 100 is clamped
	mockGateway.On("TopMovers", mock.Anything, 5).
		Return([]*quote.Quote{q("AAPL", "4.0")}, nil)

	result, err := svc.TopMovers(context.Background(), entitlement.TierFreemium, 100)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	mockGateway.AssertExpectations(t)
}

func TestService_TopMovers_UnknownTier(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGateway := new(MockGateway)
	svc := NewService(mockRepo, mockGateway, entitlement.DefaultTable(), testLogger())

	_, err := svc.TopMovers(context.Background(), entitlement.Tier(0), 10)

	assert.ErrorIs(t, err, errors.ErrUnknownTier)
}
