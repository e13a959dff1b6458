package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice-service/internal/api"
	"backoffice-service/internal/api/handlers"
	"backoffice-service/internal/api/middleware"
	"backoffice-service/internal/auth"
	"backoffice-service/internal/cache"
	"backoffice-service/internal/catalog"
	"backoffice-service/internal/config"
	"backoffice-service/internal/database"
	"backoffice-service/internal/delivery"
	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/observability"
	"backoffice-service/internal/reporting"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/repository/memory"
	"backoffice-service/internal/sales"
	"backoffice-service/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "backoffice:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var hooks []func(context.Context) error
	health := make(map[string]handlers.Check)

	var store repository.Store
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		store = memory.NewStore()
	default:
		pool, err := database.ConnectDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		hooks = append(hooks, func(context.Context) error {
			pool.Close()
			return nil
		})
		health["database"] = pool.Ping

		if err := database.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return err
		}
		store = repository.NewPostgresStore(pool)
	}

	var loginLimiter auth.LoginLimiter = auth.NewMemoryLimiter(cfg.Security.LoginAttemptsMax, cfg.Security.LoginAttemptsSpan)
	if cfg.Redis.Enabled {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		hooks = append(hooks, func(context.Context) error { return rdb.Close() })
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

		store = cache.NewCachedStore(store, rdb, cfg.Redis.CacheTTL, logger)
		loginLimiter = cache.NewLoginLimiter(rdb, cfg.Security.LoginAttemptsMax, cfg.Security.LoginAttemptsSpan)
	}

	machine := lifecycle.NewMachine(cfg.Location(), time.Now)
	feed := sales.NewFeed()

	authSvc := auth.NewService(store.Users(), auth.Options{
		Secret:     cfg.Security.JWTSecret,
		SessionTTL: cfg.Security.SessionTTL,
		Limiter:    loginLimiter,
	}, logger)

	if cfg.Bootstrap.AdminEmail != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			return err
		}
	}

	services := api.Services{
		Auth:     authSvc,
		Catalog:  catalog.NewService(store, logger),
		Sales:    sales.NewService(store, machine, feed, logger),
		Carts:    sales.NewCartStore(),
		Feed:     feed,
		Delivery: delivery.NewService(store, machine, feed, logger),
		Reporting: reporting.NewService(store, machine, reporting.Company{
			Name:    cfg.Business.CompanyName,
			Address: cfg.Business.CompanyAddress,
			Phone:   cfg.Business.CompanyPhone,
		}, logger),
		Health: health,
	}

	limiter := middleware.NewRateLimiter(cfg.Security)
	go sweepLimiter(ctx, limiter, logger)

	router := api.NewRouter(cfg.Security, services, limiter, logger)
	srv := server.New(router, cfg.Address(), cfg.Server, logger)
	for _, hook := range hooks {
		srv.RegisterShutdownHook(hook)
	}

	logger.Info("backoffice ready",
		"driver", cfg.Database.Driver,
		"redis", cfg.Redis.Enabled,
		"timezone", cfg.Business.TimeZone,
	)
	return srv.Run(ctx)
}

// sweepLimiter drops idle per-client limiters once a minute.
func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(5 * time.Minute); n > 0 {
				logger.Debug("rate limiter swept", "clients", n)
			}
		}
	}
}
