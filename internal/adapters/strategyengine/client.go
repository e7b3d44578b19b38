package strategyengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"hermes/internal/adapters/config"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Client notifies the external strategy execution engine that a
// symbol+strategy pair is active. One-way, best-effort: the core never waits
// for or depends on the engine's internal state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// NewClient creates a new strategy engine client
func NewClient(cfg config.StrategyEngineConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		log:        log.With("adapter", "strategy_engine"),
	}
}

type activateRequest struct {
	StrategyID string `json:"strategy_id"`
	Symbol     string `json:"symbol"`
}

// Activate tells the engine a strategy is now applied to a symbol.
// A single bounded-timeout attempt; failures surface as ErrUnavailable.
func (c *Client) Activate(ctx context.Context, strategyID, symbol string) error {
	if c.baseURL == "" {
		c.log.Debugw("Strategy engine not configured, skipping activation",
			"strategy_id", strategyID, "symbol", symbol)
		return nil
	}

	body, err := json.Marshal(activateRequest{StrategyID: strategyID, Symbol: symbol})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/activations", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Wrap(errors.ErrUnavailable,
			fmt.Sprintf("strategy engine returned status %d", resp.StatusCode))
	}

	return nil
}
