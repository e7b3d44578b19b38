package quotes

import (
	"context"

	"hermes/internal/domain/quote"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Cache is the storage used by CachedGateway
type Cache interface {
	// Get returns ErrNotFound on a cache miss
	Get(ctx context.Context, symbol string) (*quote.Quote, error)
	Set(ctx context.Context, q *quote.Quote) error
}

// Compile-time check
var _ quote.Gateway = (*CachedGateway)(nil)

// CachedGateway serves single-symbol quotes from cache before hitting the
// upstream provider. Search and top-mover lists are always fetched fresh.
type CachedGateway struct {
	upstream quote.Gateway
	cache    Cache
	log      *logger.Logger
}

// NewCachedGateway wraps a gateway with a quote cache
func NewCachedGateway(upstream quote.Gateway, cache Cache, log *logger.Logger) *CachedGateway {
	return &CachedGateway{
		upstream: upstream,
		cache:    cache,
		log:      log.With("adapter", "quotes_cache"),
	}
}

// GetQuote returns a cached quote when fresh, otherwise fetches upstream.
// Fallback quotes are never cached: a transient outage should not pin stale
// placeholders for the full TTL.
func (g *CachedGateway) GetQuote(ctx context.Context, symbol string) (*quote.Quote, error) {
	cached, err := g.cache.Get(ctx, symbol)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		g.log.Warnw("Quote cache read failed", "symbol", symbol, "error", err)
	}

	q, err := g.upstream.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if !q.IsFallback {
		if err := g.cache.Set(ctx, q); err != nil {
			g.log.Warnw("Quote cache write failed", "symbol", symbol, "error", err)
		}
	}

	return q, nil
}

// Search passes through to the upstream provider
func (g *CachedGateway) Search(ctx context.Context, query string, limit int) ([]*quote.Quote, error) {
	return g.upstream.Search(ctx, query, limit)
}

// TopMovers passes through to the upstream provider
func (g *CachedGateway) TopMovers(ctx context.Context, limit int) ([]*quote.Quote, error) {
	return g.upstream.TopMovers(ctx, limit)
}
