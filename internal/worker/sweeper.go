package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/tikgrab/internal/domain"
)

// ErrShutdownTimeout is returned when the sweeper doesn't stop within timeout.
var ErrShutdownTimeout = errors.New("sweeper shutdown timed out")

// SessionPruner removes idle sessions.
type SessionPruner interface {
	PruneIdle(ctx context.Context, maxIdle time.Duration) (int, error)
}

// EventStore records sweep events and removes events past their retention.
type EventStore interface {
	domain.EventEmitter
	CleanupOldEvents(ctx context.Context) error
}

// SweeperConfig holds sweeper configuration.
type SweeperConfig struct {
	Interval    time.Duration
	IdleTimeout time.Duration
}

// Sweeper periodically prunes idle sessions and expired events.
type Sweeper struct {
	interval    time.Duration
	idleTimeout time.Duration
	sessions    SessionPruner
	events      EventStore
	logger      *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSweeper creates a new sweeper. events may be nil.
func NewSweeper(cfg SweeperConfig, sessions SessionPruner, events EventStore, logger *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Sweeper{
		interval:    cfg.Interval,
		idleTimeout: cfg.IdleTimeout,
		sessions:    sessions,
		events:      events,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	s.logger.Info("starting sweeper", "interval", s.interval, "idle_timeout", s.idleTimeout)

	s.wg.Add(1)
	go s.loop()
}

// Stop gracefully stops the sweep loop.
func (s *Sweeper) Stop(timeout time.Duration) error {
	s.logger.Info("stopping sweeper")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sweeper stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.ctx)
		}
	}
}

// Sweep runs one pruning pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	removed, err := s.sessions.PruneIdle(ctx, s.idleTimeout)
	if err != nil {
		s.logger.Error("failed to prune sessions", "error", err)
		removed = 0
	}

	if s.events == nil {
		if removed > 0 {
			s.logger.Info("pruned idle sessions", "removed", removed)
		}
		return
	}
	if removed > 0 {
		s.events.Emit(domain.Event{
			Severity: domain.EventSeverityInfo,
			Category: domain.EventCategorySession,
			Source:   "sweeper",
			Message:  "pruned idle sessions",
			Metadata: domain.EventMetadata{"removed": removed}.ToJSON(),
		})
	}
	if err := s.events.CleanupOldEvents(ctx); err != nil {
		s.logger.Error("failed to clean up events", "error", err)
	}
}
