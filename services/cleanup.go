package services

import (
	"context"
	"sync"
	"time"

	"github.com/gatehouse-sso/gatehouse/domain"
	"github.com/gatehouse-sso/gatehouse/log"
)

// CleanupWorker periodically evicts expired authorization codes and
// sessions. It is safe to stop more than once.
type CleanupWorker struct {
	codes    domain.AuthCodeRepository
	sessions domain.SessionRepository
	interval time.Duration
	logger   log.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewCleanupWorker creates a worker running every interval.
func NewCleanupWorker(codes domain.AuthCodeRepository, sessions domain.SessionRepository,
	interval time.Duration, logger log.Logger,
) *CleanupWorker {
	return &CleanupWorker{
		codes:    codes,
		sessions: sessions,
		interval: interval,
		logger:   logger.Child(log.Fields{"service": "cleanup"}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the eviction loop in its own goroutine.
func (w *CleanupWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *CleanupWorker) run(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context) {
	if err := w.codes.Cleanup(ctx); err != nil {
		w.logger.Error(ctx, "auth code cleanup failed", err)
	}
	removed, err := w.sessions.Cleanup(ctx)
	if err != nil {
		w.logger.Error(ctx, "session cleanup failed", err)
		return
	}
	if removed > 0 {
		w.logger.Debug(ctx, "expired sessions evicted", log.Fields{"count": removed})
	}
}

// Stop cancels the loop and waits for the in-flight sweep to finish.
func (w *CleanupWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}
