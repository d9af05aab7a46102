package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/hungry/internal/cache"
	"github.com/forgo/hungry/internal/config"
	"github.com/forgo/hungry/internal/handler"
	"github.com/forgo/hungry/internal/jobs"
	"github.com/forgo/hungry/internal/metrics"
	"github.com/forgo/hungry/internal/middleware"
	"github.com/forgo/hungry/internal/repository"
	"github.com/forgo/hungry/internal/service"
	"github.com/forgo/hungry/internal/storage"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Dataset source
	source, err := newSource(cfg)
	if err != nil {
		slog.Error("failed to initialize catalog source", slog.String("error", err.Error()))
		os.Exit(1)
	}

	catalog := service.NewCatalogService(service.CatalogServiceConfig{
		Loader: repository.NewRestaurantRepository(source),
		Logger: logger,
	})

	refresher := jobs.NewCatalogRefresher(catalog, cfg.Catalog.RefreshInterval, logger)
	loadCtx, cancelLoad := context.WithTimeout(ctx, jobs.DefaultReloadTimeout)
	err = refresher.RunOnce(loadCtx)
	cancelLoad()
	if err != nil {
		slog.Error("failed to load catalog",
			slog.String("source", source.Name()),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	refresher.Start()
	defer refresher.Stop()

	// Optional search cache
	var searchCache cache.Cache
	if cfg.Cache.Enabled() {
		rc, err := cache.NewRedisCache(ctx, cache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			slog.Warn("search cache disabled", slog.String("error", err.Error()))
		} else {
			defer func() { _ = rc.Close() }()
			searchCache = rc
			slog.Info("search cache enabled", slog.String("addr", cfg.Cache.Addr))
		}
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:           cfg.RateLimit.Rate,
			Window:         cfg.RateLimit.Window,
			Burst:          cfg.RateLimit.Burst,
			TrustForwarded: cfg.RateLimit.TrustForwarded,
		})
		defer rateLimiter.Stop()
	}

	searchHandler := handler.NewSearchHandler(handler.SearchHandlerConfig{
		Catalog: catalog,
		Cache:   searchCache,
		Logger:  logger,
	})

	mux := http.NewServeMux()
	searchHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery,
		metrics.InstrumentHandler,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Compress,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("catalog", source.Name()),
			slog.Int("restaurants", catalog.Count()),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

func newSource(cfg *config.Config) (storage.Source, error) {
	if cfg.Catalog.Source == config.SourceMinio {
		return storage.NewObjectSource(storage.ObjectConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Object:    cfg.Storage.Object,
			UseSSL:    cfg.Storage.UseSSL,
		})
	}
	return storage.NewFileSource(cfg.Catalog.Path), nil
}
