package quote

import (
	"context"
)

// Gateway abstracts the external market data provider. Implementations
// degrade gracefully: on upstream failure GetQuote returns a tagged fallback
// quote and the list calls return empty slices, never an error the caller
// has to branch on for rendering.
type Gateway interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	Search(ctx context.Context, query string, limit int) ([]*Quote, error)
	TopMovers(ctx context.Context, limit int) ([]*Quote, error)
}
