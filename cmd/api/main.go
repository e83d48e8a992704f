package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/blog-backend/internal/api"
	"github.com/baharkarakas/blog-backend/internal/auth"
	"github.com/baharkarakas/blog-backend/internal/cache"
	"github.com/baharkarakas/blog-backend/internal/config"
	"github.com/baharkarakas/blog-backend/internal/db"
	"github.com/baharkarakas/blog-backend/internal/logger"
	"github.com/baharkarakas/blog-backend/internal/metrics"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
	"github.com/baharkarakas/blog-backend/internal/repository/memory"
	"github.com/baharkarakas/blog-backend/internal/repository/postgres"
	"github.com/baharkarakas/blog-backend/internal/services"
	"github.com/baharkarakas/blog-backend/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		users repo.Users
		posts repo.Posts
	)
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
		}
		repos := postgres.NewRepositories(pool)
		users, posts = repos.Users, repos.Posts
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		users, posts = store.Users(), store.Posts()
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, post cache disabled", "err", err)
			rdb = nil
		}
	}
	postCache := cache.NewPostCache(rdb, cfg.CacheTTL, log)
	defer postCache.Close()

	wp := worker.NewPool(cfg.HashWorkers)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authSvc := services.NewAuthService(users, auth.NewHasher(cfg.BcryptCost), tm, wp, cfg.UniformLoginErrors)
	postSvc := services.NewPostService(posts, postCache, cfg.UpdateMerge == config.MergeTruthy)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:     cfg,
		Log:     log,
		AuthSvc: authSvc,
		PostSvc: postSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			"port", cfg.HTTPPort,
			"store", cfg.StoreDriver,
			"cache", rdb != nil,
			"jwt_ttl", cfg.JWTTTL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
