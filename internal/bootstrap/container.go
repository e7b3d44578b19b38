package bootstrap

import (
	"hermes/internal/adapters/config"
	pgclient "hermes/internal/adapters/postgres"
	"hermes/internal/adapters/quotes"
	redisclient "hermes/internal/adapters/redis"
	"hermes/internal/adapters/strategyengine"
	"hermes/internal/api/health"
	"hermes/internal/domain/entitlement"
	"hermes/internal/domain/quote"
	pgrepo "hermes/internal/repository/postgres"
	redisrepo "hermes/internal/repository/redis"
	analyticssvc "hermes/internal/services/analytics"
	decksvc "hermes/internal/services/deck"
	entitlementsvc "hermes/internal/services/entitlement"
	notificationsvc "hermes/internal/services/notification"
	"hermes/internal/workers/refresh"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Container holds all application dependencies in initialization order.
// The HTTP/API layer embedding this service consumes the exported services.
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure
	PG    *pgclient.Client
	Redis *redisclient.Client

	// External collaborators
	QuoteGateway   quote.Gateway
	StrategyEngine *strategyengine.Client

	// Services
	Entitlements  *entitlementsvc.Service
	Decks         *decksvc.Service
	Analytics     *analyticssvc.Service
	Notifications *notificationsvc.Service

	// Runtime components
	Health        *health.Handler
	RefreshWorker *refresh.Worker
}

// New wires the full dependency graph
func New(cfg *config.Config, log *logger.Logger, tracker errors.Tracker) (*Container, error) {
	pg, err := pgclient.NewClient(cfg.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	rds, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		pg.Close()
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	// Repositories
	deckRepo := pgrepo.NewDeckRepository(pg.DB())
	notificationRepo := pgrepo.NewNotificationRepository(pg.DB())
	quoteCache := redisrepo.NewQuoteCache(rds, cfg.Quotes.CacheTTL)

	// External collaborators
	gateway := quotes.NewCachedGateway(quotes.NewClient(cfg.Quotes, log), quoteCache, log)
	engine := strategyengine.NewClient(cfg.StrategyEngine, log)

	// Services
	table := entitlement.DefaultTable()
	notifications := notificationsvc.NewService(notificationRepo, log)
	decks := decksvc.NewService(deckRepo, table, gateway, engine, notifications, rds, log)
	entitlements := entitlementsvc.NewService(table, deckRepo, log)
	analytics := analyticssvc.NewService(deckRepo, gateway, table, log)

	return &Container{
		Config:         cfg,
		Log:            log,
		ErrorTracker:   tracker,
		PG:             pg,
		Redis:          rds,
		QuoteGateway:   gateway,
		StrategyEngine: engine,
		Entitlements:   entitlements,
		Decks:          decks,
		Analytics:      analytics,
		Notifications:  notifications,
		Health:         health.New(log, pg.DB(), rds.Client(), cfg.App.Name),
		RefreshWorker: refresh.NewWorker(
			decks,
			cfg.Workers.RefreshInterval,
			cfg.Workers.RefreshMaxAge,
			cfg.Workers.RefreshBatch,
			log,
		),
	}, nil
}

// Close releases infrastructure connections in reverse order
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warnf("Failed to close redis: %v", err)
		}
	}
	if c.PG != nil {
		if err := c.PG.Close(); err != nil {
			c.Log.Warnf("Failed to close postgres: %v", err)
		}
	}
}
