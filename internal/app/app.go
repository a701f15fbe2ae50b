package app

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evreserve/internal/cache"
	"evreserve/internal/config"
	"evreserve/internal/engine"
	httpserver "evreserve/internal/http"
	"evreserve/internal/http/handlers"
	"evreserve/internal/inventory"
	"evreserve/internal/jobs"
	"evreserve/internal/ledger"
	"evreserve/internal/models"
	"evreserve/internal/notify"
	"evreserve/internal/store"
	"evreserve/internal/ws"
	libredis "evreserve/libs/redis"
)

// App wires reservations-service dependencies.
type App struct {
	server      *httpserver.Server
	reaper      *jobs.Reaper
	pool        *pgxpool.Pool
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	var recordStore store.RecordStore
	var pool *pgxpool.Pool
	if cfg.Database.DSN != "" {
		var err error
		pool, err = store.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		recordStore = store.NewPostgresStore(pool)
		logger.Info("using postgres record store")
	} else {
		recordStore = store.NewMemoryStore()
		logger.Info("using in-memory record store")
	}

	var redisClient *redis.Client
	var activeCache *cache.ActiveSessions
	if cfg.Redis.Addr != "" {
		var err error
		redisClient, err = libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			if pool != nil {
				pool.Close()
			}
			return nil, err
		}
		activeCache = cache.New(redisClient, cfg.CacheTTL())
	}

	inv := inventory.New(recordStore, logger)
	stations, err := seedStations(cfg)
	if err != nil {
		closeAll(pool, redisClient)
		return nil, err
	}
	if err := inv.Seed(ctx, stations); err != nil {
		closeAll(pool, redisClient)
		return nil, err
	}

	led := ledger.New(recordStore)

	hub := ws.NewHub(10*time.Second, logger)
	notifiers := notify.Multi{notify.NewLogNotifier(logger), hub}
	if cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.Notify.WebhookURL, nil))
	}

	eng := engine.New(inv, led, notifiers, activeCache, logger)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Stations:  handlers.NewStationsHandler(eng, logger),
		Sessions:  handlers.NewSessionsHandler(eng, logger),
		Health:    handlers.NewHealthHandler(),
		Hub:       hub,
		JWTSecret: cfg.Auth.JWTSecret,
	})
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	var reaper *jobs.Reaper
	if !cfg.Reaper.Disabled {
		reaper = jobs.NewReaper(eng, cfg.ReaperInterval(), logger)
	}

	return &App{
		server:      server,
		reaper:      reaper,
		pool:        pool,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server and the reservation sweeper.
func (a *App) Run(ctx context.Context) error {
	if a.reaper != nil {
		go a.reaper.Run(ctx)
	}
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}

func seedStations(cfg *config.Config) ([]*models.Station, error) {
	if cfg.Seed.File != "" {
		return inventory.LoadSeedFile(cfg.Seed.File)
	}
	return inventory.DefaultStations(), nil
}

func closeAll(pool *pgxpool.Pool, redisClient *redis.Client) {
	if pool != nil {
		pool.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
