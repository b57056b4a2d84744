package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/config"
	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/handlers"
	"github.com/vidhub/backend/internal/media"
	"github.com/vidhub/backend/internal/middleware"
	"github.com/vidhub/backend/internal/repositories"
	"github.com/vidhub/backend/internal/storage"
)

const (
	tokenIssuer      = "vidhub"
	rateLimitWindow  = time.Minute
	rateLimitIdleTTL = 10 * time.Minute
	janitorTimeout   = 30 * time.Second
)

type cleanupFunc func(ctx context.Context) error

// buildDependencies wires together concrete implementations used by the HTTP handlers.
// The returned cleanup releases background workers and connections.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, cleanupFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}

	users := repositories.NewPostgresUserRepository(pool)
	sessions := auth.NewManager(auth.Settings{
		AccessSecret:  []byte(cfg.Tokens.AccessSecret),
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshSecret: []byte(cfg.Tokens.RefreshSecret),
		RefreshTTL:    cfg.Tokens.RefreshTTL,
		Issuer:        tokenIssuer,
	}, users)

	deps := handlers.Dependencies{
		Users:         users,
		Sessions:      sessions,
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Read:          repositories.NewPostgresReadModel(pool),
		Uploads:       handlers.UploadConfig{Dir: cfg.UploadDir, MaxBytes: cfg.MaxUploadBytes},
		ExposeErrors:  cfg.IsDevelopment(),
		SecureCookies: cfg.SecureCookies,
	}

	var closers []cleanupFunc

	if cfg.ObjectStore.Bucket == "" {
		logger.Warn("object storage disabled: no bucket configured, uploads will fail")
	} else {
		store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, err
		}
		deps.Media = media.NewHost(store, media.NewFFProbe(cfg.FFProbePath, cfg.ProbeTimeout), logger)

		janitor := media.NewJanitor(store, media.JanitorConfig{Workers: cfg.JanitorWorkers, Timeout: janitorTimeout}, logger)
		deps.Janitor = janitor
		closers = append(closers, janitor.Shutdown)
	}

	limiter, closeLimiter := buildRateLimiter(ctx, cfg, logger)
	deps.RateLimiter = limiter
	if closeLimiter != nil {
		closers = append(closers, closeLimiter)
	}

	cleanup := func(ctx context.Context) error {
		var errs []error
		for _, closeFn := range closers {
			if err := closeFn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return deps, cleanup, nil
}

// buildRateLimiter prefers a shared Redis counter and falls back to per-process limits.
func buildRateLimiter(ctx context.Context, cfg config.Config, logger *slog.Logger) (middleware.RateLimiter, cleanupFunc) {
	if cfg.AuthRateLimit <= 0 {
		return nil, nil
	}
	if cfg.RedisURL != "" {
		limiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL, cfg.AuthRateLimit, rateLimitWindow)
		if err == nil {
			err = limiter.Ping(ctx)
			if err == nil {
				return limiter, func(context.Context) error { return limiter.Close() }
			}
			_ = limiter.Close()
		}
		logger.Warn("redis rate limiter unavailable, falling back to in-memory limiter", "error", err)
	}
	return middleware.NewIPRateLimiter(cfg.AuthRateLimit, rateLimitWindow, cfg.AuthRateLimit, rateLimitIdleTTL), nil
}
