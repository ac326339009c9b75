package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/session"
)

// InMemorySessionRepository implements SessionRepository using in-memory storage.
type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	created  int
	pruned   int
}

// NewInMemorySessionRepository creates a new in-memory session repository.
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[string]*session.Session),
	}
}

// GetOrCreate returns the session with id, creating it if needed.
func (r *InMemorySessionRepository) GetOrCreate(ctx context.Context, id string) (*session.Session, error) {
	if id != "" {
		r.mu.RLock()
		s, ok := r.sessions[id]
		r.mu.RUnlock()
		if ok {
			s.Touch()
			return s, nil
		}
	} else {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another request may have created it between the locks.
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}

	s := session.New(id)
	r.sessions[id] = s
	r.created++
	return s, nil
}

// Get retrieves a session by ID.
func (r *InMemorySessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete cancels any pending request and removes the session.
func (r *InMemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Cancel()
	delete(r.sessions, id)
	return nil
}

// PruneIdle removes sessions idle for longer than maxIdle.
// Sessions with a request in flight are kept.
func (r *InMemorySessionRepository) PruneIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.Pending() || s.LastSeen().After(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	r.pruned += removed
	return removed, nil
}

// Stats returns session statistics.
func (r *InMemorySessionRepository) Stats(ctx context.Context) (*SessionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &SessionStats{
		Active:  len(r.sessions),
		Created: r.created,
		Pruned:  r.pruned,
	}
	for _, s := range r.sessions {
		if s.Pending() {
			stats.Pending++
		}
	}
	return stats, nil
}

// Clear removes all sessions (useful for testing).
func (r *InMemorySessionRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		s.Cancel()
	}
	r.sessions = make(map[string]*session.Session)
}
