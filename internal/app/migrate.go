package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidhub/backend/internal/config"
	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/logging"
)

const (
	migrationMaxRetries  = 3
	migrationBaseBackoff = 100 * time.Millisecond
	migrationMaxBackoff  = 3 * time.Second
)

var retryablePgErrorCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

func runMigrations(ctx context.Context, args []string) error {
	command := "up"
	if len(args) > 0 && args[0] != "" {
		command = args[0]
	}
	switch command {
	case "up", "status":
	case "down":
		return errors.New("down migrations are not supported")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	dir, err := resolveDir(cfg.MigrationDir)
	if err != nil {
		return err
	}
	fsys := os.DirFS(dir)
	names, err := listMigrations(fsys)
	if err != nil {
		return err
	}

	return withConn(ctx, cfg, func(conn *pgxpool.Conn) error {
		if _, err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
                version TEXT PRIMARY KEY,
                applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`); err != nil {
			return fmt.Errorf("ensure schema_migrations table: %w", err)
		}
		applied, err := appliedMigrations(ctx, conn)
		if err != nil {
			return err
		}

		if command == "status" {
			printStatus(os.Stdout, names, applied)
			return nil
		}

		pending := pendingMigrations(names, applied)
		if len(pending) == 0 {
			logger.Info("schema is up to date", "applied", len(applied))
			return nil
		}
		for _, name := range pending {
			contents, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("read migration %s: %w", name, err)
			}
			onRetry := func(attempt int, err error) {
				logger.Warn("transient migration failure", "migration", name, "attempt", attempt, "max_attempts", migrationMaxRetries, "error", err)
			}
			if err := withRetry(ctx, migrationMaxRetries, migrationBaseBackoff, migrationMaxBackoff, shouldRetryMigration, onRetry, func() error {
				return applyMigration(ctx, conn, name, string(contents))
			}); err != nil {
				return err
			}
			logger.Info("applied migration", "migration", name)
		}
		return nil
	})
}

func runSeed(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return errors.New("expected seed name (e.g. dev)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	dir, err := resolveDir(cfg.SeedDir)
	if err != nil {
		return err
	}
	name := seedFileName(args[0])
	contents, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read seed %s: %w", name, err)
	}

	return withConn(ctx, cfg, func(conn *pgxpool.Conn) error {
		if _, err := conn.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply seed %s: %w", name, err)
		}
		logger.Info("applied seed", "seed", name)
		return nil
	})
}

func withConn(ctx context.Context, cfg config.Config, fn func(*pgxpool.Conn) error) error {
	pool, err := db.Connect(ctx, cfg.DatabaseURL, dbOptions(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(conn)
}

// resolveDir anchors relative directories at the working directory.
func resolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return filepath.Join(wd, dir), nil
}

// listMigrations returns the .sql files at the root of fsys in lexical order.
func listMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}

func appliedMigrations(ctx context.Context, conn *pgxpool.Conn) (map[string]struct{}, error) {
	rows, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("fetch applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan applied migrations: %w", err)
	}
	applied := make(map[string]struct{}, len(versions))
	for _, version := range versions {
		applied[version] = struct{}{}
	}
	return applied, nil
}

func pendingMigrations(names []string, applied map[string]struct{}) []string {
	var pending []string
	for _, name := range names {
		if _, ok := applied[name]; !ok {
			pending = append(pending, name)
		}
	}
	return pending
}

func printStatus(w io.Writer, names []string, applied map[string]struct{}) {
	for _, name := range names {
		mark := " "
		if _, ok := applied[name]; ok {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %s\n", mark, name)
	}
}

func seedFileName(name string) string {
	if strings.HasSuffix(name, ".sql") {
		return name
	}
	return name + "_seed.sql"
}

// applyMigration runs contents and records the version in a single serializable transaction.
func applyMigration(ctx context.Context, conn *pgxpool.Conn, name, contents string) error {
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin migration transaction for %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, contents); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

// withRetry calls fn up to attempts times with capped exponential backoff while
// retryable reports the failure as transient.
func withRetry(ctx context.Context, attempts int, base, ceiling time.Duration, retryable func(error) bool, onRetry func(int, error), fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts || !retryable(err) {
			return err
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}

		backoff := min(base<<(attempt-1), ceiling)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("exceeded max retries (%d): %w", attempts, err)
}

func shouldRetryMigration(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, pgx.ErrTxClosed) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := retryablePgErrorCodes[pgErr.Code]
		return ok
	}
	return false
}

