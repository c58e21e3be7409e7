package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/market-portal/internal/api/http"
	"github.com/spec-kit/market-portal/internal/api/http/handlers"
	"github.com/spec-kit/market-portal/internal/auth"
	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/config"
	"github.com/spec-kit/market-portal/internal/events"
	"github.com/spec-kit/market-portal/internal/observability"
	"github.com/spec-kit/market-portal/internal/persistence"
	"github.com/spec-kit/market-portal/internal/repository"
	"github.com/spec-kit/market-portal/internal/service"
	"github.com/spec-kit/market-portal/internal/session"
	"github.com/spec-kit/market-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dependencies := map[string]handlers.Pinger{}
	var purger worker.IdlePurger
	var storage session.Storage

	switch cfg.Session.Storage {
	case config.StorageFile:
		storage = session.NewFileStorage(cfg.Session.FilePath)
	case config.StorageRedis:
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		dependencies["redis"] = redis
		storage = repository.NewRedisSessionCache(redis, cfg.Session.IdleTTL())
	case config.StoragePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		dependencies["postgres"] = pg
		repo := repository.NewPostgresSessionRepository(pg.PoolHandle())
		storage = repo
		purger = repo
	default:
		storage = session.NewMemoryStorage()
	}

	sealingKey, err := cfg.Session.SealingKey()
	if err != nil {
		logger.Fatal("invalid sealing key", zap.Error(err))
	}
	storage = session.NewSealedStorage(storage, sealingKey)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), logger)
	manager := service.NewManager(service.WorkspaceDeps{
		Client:      client,
		Storage:     storage,
		Expiry:      auth.NewTokenInspector(),
		Dispatcher:  dispatcher,
		Logger:      logger,
		AutoResolve: cfg.Session.AutoResolve,
	})

	idle := cfg.Session.IdleTTL()
	worker.StartSessionSweeper(ctx, worker.SessionSweeperConfig{
		Interval:  idle / 4,
		Idle:      idle,
		RecordTTL: 24 * idle,
	}, manager, purger, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Auth:      handlers.NewAuthHandler(service.NewAuthService(client, dispatcher, logger), manager),
		Dashboard: handlers.NewDashboardHandler(manager),
		Products:  handlers.NewProductsHandler(manager),
		Cart:      handlers.NewCartHandler(manager),
		Checkout:  handlers.NewCheckoutHandler(manager),
		Admin:     handlers.NewAdminHandler(manager),
		Sessions: auth.NewSessionMiddleware(manager, auth.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		}, logger),
	})

	go func() {
		logger.Info("portal listening", zap.String("addr", cfg.App.Addr()), zap.String("backend", cfg.Backend.BaseURL))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
