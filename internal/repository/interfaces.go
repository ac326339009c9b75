package repository

import (
	"context"
	"time"

	"github.com/iconidentify/tikgrab/internal/session"
)

// SessionRepository stores per-client resolve sessions.
type SessionRepository interface {
	// GetOrCreate returns the session with id, creating it if needed.
	// An empty id always creates a new session with a generated id.
	GetOrCreate(ctx context.Context, id string) (*session.Session, error)

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete cancels any pending request and removes the session.
	Delete(ctx context.Context, id string) error

	// PruneIdle removes sessions idle for longer than maxIdle.
	PruneIdle(ctx context.Context, maxIdle time.Duration) (int, error)

	// Stats returns session statistics.
	Stats(ctx context.Context) (*SessionStats, error)
}

// SessionStats contains session statistics.
type SessionStats struct {
	Active  int
	Pending int
	Created int
	Pruned  int
}
