package media

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Deleter removes stored objects by location.
type Deleter interface {
	Delete(ctx context.Context, location string) error
}

// JanitorConfig controls the concurrency characteristics of the janitor.
type JanitorConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// Janitor deletes superseded media objects in the background. Failures are
// logged and dropped.
type Janitor struct {
	store   Deleter
	logger  *slog.Logger
	timeout time.Duration

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewJanitor starts cfg.Workers goroutines draining the delete queue.
func NewJanitor(store Deleter, cfg JanitorConfig, logger *slog.Logger) *Janitor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	j := &Janitor{
		store:   store,
		logger:  logger,
		timeout: cfg.Timeout,
		jobs:    make(chan string, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	j.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go j.worker()
	}

	return j
}

// Enqueue schedules deletion of location. Empty locations are ignored.
func (j *Janitor) Enqueue(ctx context.Context, location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-j.ctx.Done():
		return errJanitorClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-j.ctx.Done():
		return errJanitorClosed
	case j.jobs <- location:
		return nil
	}
}

// Shutdown stops accepting work and waits for queued deletes to finish.
func (j *Janitor) Shutdown(ctx context.Context) error {
	j.once.Do(func() {
		j.cancel()
		close(j.jobs)
	})

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (j *Janitor) worker() {
	defer j.wg.Done()

	for location := range j.jobs {
		j.delete(location)
	}
}

func (j *Janitor) delete(location string) {
	if j.store == nil {
		j.logger.Error("media janitor missing store", "location", location)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.store.Delete(ctx, location); err != nil {
		j.logger.Error("delete media object", "location", location, "error", err)
		return
	}
	j.logger.Debug("deleted media object", "location", location)
}
