package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/repository"
	"github.com/iconidentify/tikgrab/internal/session"
	"github.com/iconidentify/tikgrab/pkg/tiktok"
)

// Fetcher resolves a validated content URL.
type Fetcher interface {
	Fetch(ctx context.Context, contentURL string) (*domain.Descriptor, error)
}

// ResolveService validates input and runs last-request-wins resolution
// against a session.
type ResolveService struct {
	fetcher  Fetcher
	sessions repository.SessionRepository
	events   domain.EventEmitter
	logger   *slog.Logger
}

// NewResolveService creates a new resolve service. events may be nil.
func NewResolveService(
	fetcher Fetcher,
	sessions repository.SessionRepository,
	events domain.EventEmitter,
	logger *slog.Logger,
) *ResolveService {
	return &ResolveService{
		fetcher:  fetcher,
		sessions: sessions,
		events:   events,
		logger:   logger,
	}
}

// Validate trims raw input and checks it against the known URL shapes.
func Validate(raw string) (string, error) {
	u := tiktok.NormalizeURL(raw)
	if u == "" {
		return "", domain.ErrEmptyURL
	}
	if !tiktok.IsValidURL(u) {
		return "", domain.ErrInvalidURL
	}
	return u, nil
}

// Session returns the session with id, creating it when missing.
func (s *ResolveService) Session(ctx context.Context, id string) (*session.Session, error) {
	return s.sessions.GetOrCreate(ctx, id)
}

// Resolve validates raw and resolves it within sess.
//
// Invalid input fails without touching the session, so a request already in
// flight keeps running. Otherwise any pending request of the session is
// canceled, and if this request is itself replaced before it settles the
// result is ErrSuperseded.
func (s *ResolveService) Resolve(ctx context.Context, sess *session.Session, raw string) (*domain.Descriptor, error) {
	contentURL, err := Validate(raw)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("session_id", sess.ID(), "url", contentURL)

	h := sess.Begin(ctx)
	start := time.Now()

	desc, fetchErr := s.fetcher.Fetch(h.Context(), contentURL)
	desc, err = sess.Settle(h, desc, fetchErr)

	switch {
	case err == nil:
		logger.Info("content resolved",
			"is_photo", desc.IsPhoto,
			"images", len(desc.Images),
			"duration", time.Since(start),
		)
		s.emit(domain.EventSeveritySuccess, "content resolved", domain.EventMetadata{
			"session_id": sess.ID(),
			"url":        contentURL,
			"is_photo":   desc.IsPhoto,
			"author":     desc.Author,
		})
		return desc, nil

	case domain.IsSilent(err):
		logger.Debug("resolve discarded", "seq", h.Seq(), "reason", err)
		if errors.Is(err, domain.ErrSuperseded) {
			return nil, domain.ErrSuperseded
		}
		return nil, domain.ErrCanceled

	default:
		s.emit(domain.EventSeverityError, "resolve failed", domain.EventMetadata{
			"session_id": sess.ID(),
			"url":        contentURL,
			"error":      err.Error(),
		})
		return nil, err
	}
}

// ResolveFor resolves raw within the session identified by sessionID.
func (s *ResolveService) ResolveFor(ctx context.Context, sessionID, raw string) (*domain.Descriptor, error) {
	sess, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, sess, raw)
}

// Current returns the current descriptor of the session identified by sessionID.
func (s *ResolveService) Current(ctx context.Context, sessionID string) (*domain.Descriptor, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Touch()
	return sess.Current()
}

func (s *ResolveService) emit(severity domain.EventSeverity, message string, metadata domain.EventMetadata) {
	if s.events == nil {
		return
	}
	s.events.Emit(domain.Event{
		Severity: severity,
		Category: domain.EventCategoryResolve,
		Source:   "resolver",
		Message:  message,
		Metadata: metadata.ToJSON(),
	})
}
