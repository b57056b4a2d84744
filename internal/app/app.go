package app

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

	"github.com/go-chi/chi/v5"

	"github.com/vidhub/backend/internal/config"
	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/handlers"
	"github.com/vidhub/backend/internal/httpserver"
	"github.com/vidhub/backend/internal/logging"
	"github.com/vidhub/backend/internal/middleware"
)

// Run bootstraps the vidhub backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, migrate, or seed")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	logger = logger.With("service", "vidhub", "env", cfg.Environment)
	slog.SetDefault(logger)

	pool, err := db.Connect(ctx, cfg.DatabaseURL, dbOptions(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	deps, cleanup, err := buildDependencies(ctx, pool, cfg, logger)
	if err != nil {
		return err
	}

	handler, err := newRouter(cfg, logger, deps)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.AppPort, handler, httpserver.Timeouts{
		ReadHeader: 5 * time.Second,
		Write:      cfg.WriteTimeout,
		Idle:       time.Minute,
	})

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := cleanup(shutdownCtx); err != nil {
		logger.Warn("release dependencies", "error", err)
	}
	return shutdownErr
}

// newRouter assembles the middleware chain around the API routes.
func newRouter(cfg config.Config, logger *slog.Logger, deps handlers.Dependencies) (http.Handler, error) {
	cors, err := middleware.CORS(cfg.CORSOrigins, deps.ExposeErrors)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(logger, deps.ExposeErrors))
	router.Use(cors)
	handlers.RegisterRoutes(router, deps)
	return router, nil
}

func dbOptions(cfg config.Config) db.Options {
	return db.Options{
		MaxConns:        int32(cfg.Database.MaxConns),
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	}
}
