package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a normalized market data snapshot for one symbol
type Quote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Sector        string          `json:"sector"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	AsOf          time.Time       `json:"as_of"`

	// IsFallback marks a degraded quote produced when the upstream provider
	// was unreachable. Deck rendering must not hard-fail on market outages.
	IsFallback bool `json:"is_fallback"`
}

// Fallback returns a clearly tagged placeholder quote for a symbol
func Fallback(symbol string, now time.Time) *Quote {
	return &Quote{
		Symbol:     symbol,
		Name:       symbol,
		Sector:     "Unknown",
		AsOf:       now,
		IsFallback: true,
	}
}
