package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	// Embedded zone database for lab.timezone in minimal images.
	_ "time/tzdata"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mundox-portal-bff/config"
	"mundox-portal-bff/internal/api"
	"mundox-portal-bff/internal/auth"
	"mundox-portal-bff/internal/backend"
	"mundox-portal-bff/internal/db"
	"mundox-portal-bff/internal/lab"
	"mundox-portal-bff/internal/mw"
	"mundox-portal-bff/internal/notification"
	"mundox-portal-bff/internal/security"
	"mundox-portal-bff/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cfg, logger)
	},
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	if cfg.Backend.BaseURL == "" {
		return errors.New("backend.base_url (or BACKEND_URL) must be set")
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT secret is not configured, every authenticated request will be rejected")
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appStore := store.NewGormStore(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	webpushOptions := notification.Options(cfg.Push)
	pool := notification.NewWorkerPool(cfg.WorkerPool, appStore, webpushOptions, logger.Named("push"))
	pool.Start(ctx)

	filter, err := security.NewContentFilter(cfg.Security.ExtraPatterns)
	if err != nil {
		return fmt.Errorf("invalid security.extra_patterns: %w", err)
	}
	guard := security.NewGuard(
		security.NewRateLimiter(cfg.Security.Window, cfg.Security.MaxRequests, cfg.Security.Limits),
		filter,
		security.NewBlockList(),
	)

	validator, err := newValidator(cfg.Lab)
	if err != nil {
		return err
	}

	responseCache, closeCache := newResponseCache(cfg.Cache, logger)
	defer closeCache()

	router, err := api.NewRouter(api.Deps{
		Config:    cfg,
		Backend:   backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout),
		Validator: validator,
		Store:     appStore,
		Notifier:  pool,
		Verifier:  auth.NewVerifier(cfg.Auth.JWTSecret),
		Guard:     guard,
		Cache:     responseCache,
		Webpush:   webpushOptions,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port), zap.String("backend", cfg.Backend.BaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("Shutdown signal received, stopping services")
	case err := <-serverErr:
		return fmt.Errorf("HTTP server ListenAndServe: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	cancel()
	pool.Wait()
	logger.Info("Server gracefully stopped")
	return nil
}

func newRoster(cfg config.LabConfig) *lab.Roster {
	computers := make([]lab.Computer, 0, len(cfg.Computers))
	for _, c := range cfg.Computers {
		computers = append(computers, lab.Computer{
			Number:      c.Number,
			Category:    lab.Category(c.Category),
			Description: c.Description,
		})
	}
	return lab.NewRoster(computers)
}

func newOptions(cfg config.LabConfig) lab.Options {
	return lab.Options{UserTypes: cfg.UserTypes, Purposes: cfg.Purposes, Software: cfg.Software}
}

// newValidator judges past dates in the configured lab timezone.
func newValidator(cfg config.LabConfig) (*lab.Validator, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid lab.timezone %q: %w", cfg.Timezone, err)
	}
	return lab.NewValidator(newRoster(cfg), newOptions(cfg), loc), nil
}

// newResponseCache uses redis when an address is configured, go-cache otherwise.
func newResponseCache(cfg config.CacheConfig, logger *zap.Logger) (mw.ResponseCache, func()) {
	if cfg.RedisAddr == "" {
		return mw.NewMemoryCache(cfg.TTL, 2*cfg.TTL), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, cache reads will miss until it recovers", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	} else {
		logger.Info("Using redis response cache", zap.String("addr", cfg.RedisAddr))
	}
	return mw.NewRedisCache(client, logger.Named("cache")), func() { _ = client.Close() }
}
