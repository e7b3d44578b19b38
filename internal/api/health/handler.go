package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"hermes/pkg/logger"
)

// Handler provides health check endpoints
type Handler struct {
	log       *logger.Logger
	postgres  *sqlx.DB
	redis     *redis.Client
	startTime time.Time
	service   string
}

// New creates a new health check handler
func New(log *logger.Logger, postgres *sqlx.DB, redis *redis.Client, service string) *Handler {
	return &Handler{
		log:       log,
		postgres:  postgres,
		redis:     redis,
		startTime: time.Now(),
		service:   service,
	}
}

// Status represents the overall health status
type Status struct {
	Status    string                     `json:"status"` // "healthy", "unhealthy"
	Service   string                     `json:"service"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if the process is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleReadiness checks backing stores and reports per-component health
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]ComponentHealth{
		"postgres": h.checkPostgres(ctx),
		"redis":    h.checkRedis(ctx),
	}

	status := "healthy"
	code := http.StatusOK
	for _, c := range checks {
		if c.Status != "healthy" {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Status{
		Status:    status,
		Service:   h.service,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// Register mounts the health endpoints onto a mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.HandleLiveness)
	mux.HandleFunc("/readyz", h.HandleReadiness)
}

func (h *Handler) checkPostgres(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := h.postgres.PingContext(ctx); err != nil {
		return ComponentHealth{Status: "unhealthy", Error: err.Error()}
	}
	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: time.Since(start).Round(time.Millisecond).String(),
	}
}

func (h *Handler) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return ComponentHealth{Status: "unhealthy", Error: err.Error()}
	}
	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: time.Since(start).Round(time.Millisecond).String(),
	}
}
