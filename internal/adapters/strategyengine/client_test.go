package strategyengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"hermes/internal/adapters/config"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

func testClient(baseURL string) *Client {
	return NewClient(config.StrategyEngineConfig{
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
	}, testLogger())
}

func TestClient_Activate(t *testing.T) {
	var received activateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/activations", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := testClient(server.URL).Activate(context.Background(), "momentum-v2", "AAPL")

	assert.NoError(t, err)
	assert.Equal(t, "momentum-v2", received.StrategyID)
	assert.Equal(t, "AAPL", received.Symbol)
}

func TestClient_Activate_UnavailableOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := testClient(server.URL).Activate(context.Background(), "momentum-v2", "AAPL")

	assert.ErrorIs(t, err, errors.ErrUnavailable)
}

func TestClient_Activate_SkipsWhenNotConfigured(t *testing.T) {
	err := testClient("").Activate(context.Background(), "momentum-v2", "AAPL")

	assert.NoError(t, err)
}
