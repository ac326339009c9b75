// Package session tracks the single in-flight resolve request and the
// current result of one client.
//
// A Session holds exactly two slots: the current descriptor and the pending
// request handle. Begin replaces the pending handle and cancels the old one;
// Settle only accepts the outcome of the handle that is still pending, so the
// last request always wins and earlier outcomes are discarded.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/iconidentify/tikgrab/internal/domain"
)

// Handle is the cancellation handle of one resolve request.
type Handle struct {
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the context the request must run under.
func (h *Handle) Context() context.Context {
	return h.ctx
}

// Seq returns the request's sequence number within its session.
func (h *Handle) Seq() uint64 {
	return h.seq
}

// Cancel marks the request obsolete.
func (h *Handle) Cancel() {
	h.cancel()
}

// Session is the per-client resolve state.
type Session struct {
	id        string
	createdAt time.Time

	mu       sync.Mutex
	current  *domain.Descriptor
	pending  *Handle
	seq      uint64
	lastSeen time.Time
}

// New creates an empty session.
func New(id string) *Session {
	now := time.Now()
	return &Session{
		id:        id,
		createdAt: now,
		lastSeen:  now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Begin starts a new request. Any pending request is canceled and the
// current result is cleared.
func (s *Session) Begin(parent context.Context) *Handle {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.cancel()
	}

	s.seq++
	h := &Handle{seq: s.seq, ctx: ctx, cancel: cancel}
	s.pending = h
	s.current = nil
	s.lastSeen = time.Now()
	return h
}

// Settle records the outcome of h. If h is no longer the pending request the
// outcome is dropped and ErrSuperseded is returned.
func (s *Session) Settle(h *Handle, d *domain.Descriptor, err error) (*domain.Descriptor, error) {
	defer h.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != h {
		return nil, domain.ErrSuperseded
	}
	s.pending = nil
	s.lastSeen = time.Now()

	if err != nil {
		return nil, err
	}
	s.current = d
	return d, nil
}

// Cancel aborts the pending request, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.cancel()
		s.pending = nil
	}
}

// Current returns the last successfully resolved descriptor.
func (s *Session) Current() (*domain.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, domain.ErrNoCurrent
	}
	return s.current, nil
}

// Pending reports whether a request is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
