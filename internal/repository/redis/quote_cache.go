package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"hermes/internal/adapters/redis"
	"hermes/internal/domain/quote"
	"hermes/pkg/errors"
)

// QuoteCache caches normalized quotes in Redis. Entries expire by absolute
// age (the configured TTL), not LRU, so external call volume stays bounded.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuoteCache creates a new quote cache
func NewQuoteCache(client *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{client: client, ttl: ttl}
}

func quoteKey(symbol string) string {
	return "quote:" + symbol
}

// Get retrieves a cached quote. Returns ErrNotFound on a cache miss.
func (c *QuoteCache) Get(ctx context.Context, symbol string) (*quote.Quote, error) {
	var q quote.Quote
	err := c.client.Get(ctx, quoteKey(symbol), &q)
	if err == goredis.Nil {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read quote cache")
	}
	return &q, nil
}

// Set stores a quote with the configured TTL
func (c *QuoteCache) Set(ctx context.Context, q *quote.Quote) error {
	return c.client.Set(ctx, quoteKey(q.Symbol), q, c.ttl)
}

// Invalidate drops a cached quote
func (c *QuoteCache) Invalidate(ctx context.Context, symbol string) error {
	return c.client.Delete(ctx, quoteKey(symbol))
}
