package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"hermes/internal/adapters/config"
	"hermes/internal/domain/quote"
	"hermes/pkg/logger"
)

// Compile-time check
var _ quote.Gateway = (*Client)(nil)

// Client calls the external market data provider over HTTP. Every call gets
// exactly one bounded-timeout attempt; retries are left to the caller's next
// user-triggered refresh. On any upstream failure GetQuote degrades to a
// tagged fallback quote so deck rendering never hard-fails.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a new quote provider client
func NewClient(cfg config.QuotesConfig, log *logger.Logger) *Client {
	// Convert per-minute budget to rps with a small burst allowance
	rps := float64(cfg.RequestsPerMinute) / 60.0
	burst := cfg.RequestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		log:        log.With("adapter", "quotes"),
	}
}

// quoteResponse is the provider wire format
type quoteResponse struct {
	Symbol        string      `json:"symbol"`
	Name          string      `json:"name"`
	Sector        string      `json:"sector"`
	Price         json.Number `json:"price"`
	Change        json.Number `json:"change"`
	ChangePercent json.Number `json:"change_percent"`
}

// GetQuote fetches a quote for one symbol, degrading to a fallback on failure
func (c *Client) GetQuote(ctx context.Context, symbol string) (*quote.Quote, error) {
	var resp quoteResponse
	if err := c.get(ctx, "/v1/quote", url.Values{"symbol": {symbol}}, &resp); err != nil {
		c.log.Warnw("Quote fetch failed, returning fallback", "symbol", symbol, "error", err)
		return quote.Fallback(symbol, time.Now().UTC()), nil
	}

	q, err := toQuote(resp)
	if err != nil {
		c.log.Warnw("Quote payload malformed, returning fallback", "symbol", symbol, "error", err)
		return quote.Fallback(symbol, time.Now().UTC()), nil
	}

	return q, nil
}

// Search finds quotes matching a query, degrading to an empty result on failure
func (c *Client) Search(ctx context.Context, query string, limit int) ([]*quote.Quote, error) {
	var resp []quoteResponse
	params := url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/v1/search", params, &resp); err != nil {
		c.log.Warnw("Quote search failed, returning empty result", "query", query, "error", err)
		return []*quote.Quote{}, nil
	}

	return c.toQuotes(resp), nil
}

// TopMovers fetches the day's biggest movers, degrading to an empty result on failure
func (c *Client) TopMovers(ctx context.Context, limit int) ([]*quote.Quote, error) {
	var resp []quoteResponse
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/v1/movers", params, &resp); err != nil {
		c.log.Warnw("Top movers fetch failed, returning empty result", "error", err)
		return []*quote.Quote{}, nil
	}

	return c.toQuotes(resp), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote provider returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

func (c *Client) toQuotes(resp []quoteResponse) []*quote.Quote {
	quotes := make([]*quote.Quote, 0, len(resp))
	for _, item := range resp {
		q, err := toQuote(item)
		if err != nil {
			c.log.Warnw("Skipping malformed quote", "symbol", item.Symbol, "error", err)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}

func toQuote(resp quoteResponse) (*quote.Quote, error) {
	price, err := parseDecimal(resp.Price)
	if err != nil {
		return nil, fmt.Errorf("bad price: %w", err)
	}
	change, err := parseDecimal(resp.Change)
	if err != nil {
		return nil, fmt.Errorf("bad change: %w", err)
	}
	changePercent, err := parseDecimal(resp.ChangePercent)
	if err != nil {
		return nil, fmt.Errorf("bad change_percent: %w", err)
	}

	sector := resp.Sector
	if sector == "" {
		sector = "Unknown"
	}

	return &quote.Quote{
		Symbol:        resp.Symbol,
		Name:          resp.Name,
		Sector:        sector,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		AsOf:          time.Now().UTC(),
	}, nil
}

func parseDecimal(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}
