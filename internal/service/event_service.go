package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/iconidentify/tikgrab/internal/config"
	"github.com/iconidentify/tikgrab/internal/domain"
)

// EventService keeps the activity log in an in-memory ring buffer
// with optional SQLite persistence.
type EventService struct {
	cfg    config.EventsConfig
	logger *slog.Logger

	mu     sync.RWMutex
	events []domain.Event
	head   int // next write position
	count  int

	db *sql.DB
}

// NewEventService creates a new event service.
func NewEventService(cfg config.EventsConfig, logger *slog.Logger) (*EventService, error) {
	if cfg.RingBufferSize <= 0 {
		cfg.RingBufferSize = 1000
	}

	svc := &EventService{
		cfg:    cfg,
		logger: logger,
		events: make([]domain.Event, cfg.RingBufferSize),
	}

	if cfg.PersistToSQLite && cfg.SQLitePath != "" {
		if err := svc.initSQLite(); err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		logger.Info("event persistence enabled", "path", cfg.SQLitePath)
	}

	return svc, nil
}

func (s *EventService) initSQLite() error {
	if dir := filepath.Dir(s.cfg.SQLitePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			severity TEXT NOT NULL,
			category TEXT NOT NULL,
			message TEXT NOT NULL,
			source TEXT,
			metadata TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
		CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("create table: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the event service and any open resources.
func (s *EventService) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Emit records an event to the activity log.
func (s *EventService) Emit(event domain.Event) {
	if event.ID == "" {
		event.ID = domain.EventID("evt_" + uuid.NewString())
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.events[s.head] = event
	s.head = (s.head + 1) % s.cfg.RingBufferSize
	if s.count < s.cfg.RingBufferSize {
		s.count++
	}
	s.mu.Unlock()

	if s.db != nil {
		s.persistEvent(event)
	}

	logLevel := slog.LevelInfo
	switch event.Severity {
	case domain.EventSeverityWarning:
		logLevel = slog.LevelWarn
	case domain.EventSeverityError:
		logLevel = slog.LevelError
	}
	s.logger.Log(context.Background(), logLevel, "event emitted",
		"event_id", event.ID,
		"category", event.Category,
		"severity", event.Severity,
		"message", event.Message,
		"source", event.Source,
	)
}

func (s *EventService) persistEvent(event domain.Event) {
	metadataStr := ""
	if event.Metadata != nil {
		metadataStr = string(event.Metadata)
	}

	_, err := s.db.Exec(`
		INSERT INTO events (id, timestamp, severity, category, message, source, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, string(event.ID), event.Timestamp.UTC(), string(event.Severity), string(event.Category), event.Message, event.Source, metadataStr)
	if err != nil {
		s.logger.Warn("failed to persist event", "event_id", event.ID, "error", err)
	}
}

// Query returns buffered events matching the filter, newest first.
func (s *EventService) Query(ctx context.Context, query domain.EventQuery) (*domain.EventQueryResult, error) {
	query = normalizeQuery(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Event, 0, s.count)
	for i := 0; i < s.count; i++ {
		idx := (s.head - 1 - i + s.cfg.RingBufferSize) % s.cfg.RingBufferSize
		event := s.events[idx]
		if event.ID == "" {
			continue
		}
		if query.Filter.Matches(event) {
			matched = append(matched, event)
		}
	}

	total := len(matched)
	if query.Offset >= total {
		return &domain.EventQueryResult{Events: []domain.Event{}, Total: total}, nil
	}

	end := query.Offset + query.Limit
	if end > total {
		end = total
	}

	return &domain.EventQueryResult{
		Events:  matched[query.Offset:end],
		Total:   total,
		HasMore: end < total,
	}, nil
}

// QueryHistorical queries persisted events.
func (s *EventService) QueryHistorical(ctx context.Context, query domain.EventQuery) (*domain.EventQueryResult, error) {
	if s.db == nil {
		return &domain.EventQueryResult{Events: []domain.Event{}}, nil
	}
	query = normalizeQuery(query)

	var conditions []string
	var args []interface{}

	if query.Filter.Severity != nil {
		conditions = append(conditions, "severity = ?")
		args = append(args, string(*query.Filter.Severity))
	}
	if query.Filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, string(*query.Filter.Category))
	}
	if query.Filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, query.Filter.Source)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM events %s", whereClause)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT id, timestamp, severity, category, message, source, metadata
		FROM events %s
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`, whereClause)
	args = append(args, query.Limit, query.Offset)

	rows, err := s.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0, query.Limit)
	for rows.Next() {
		var event domain.Event
		var source, metadataStr sql.NullString
		if err := rows.Scan(&event.ID, &event.Timestamp, &event.Severity, &event.Category, &event.Message, &source, &metadataStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Source = source.String
		if metadataStr.Valid && metadataStr.String != "" {
			event.Metadata = json.RawMessage(metadataStr.String)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return &domain.EventQueryResult{
		Events:  events,
		Total:   total,
		HasMore: query.Offset+len(events) < total,
	}, nil
}

func normalizeQuery(q domain.EventQuery) domain.EventQuery {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// EventStats describes the event buffer.
type EventStats struct {
	BufferSize    int  `json:"buffer_size"`
	BufferUsed    int  `json:"buffer_used"`
	SQLiteEnabled bool `json:"sqlite_enabled"`
}

// Stats returns statistics about the event service.
func (s *EventService) Stats() EventStats {
	s.mu.RLock()
	used := s.count
	s.mu.RUnlock()

	return EventStats{
		BufferSize:    s.cfg.RingBufferSize,
		BufferUsed:    used,
		SQLiteEnabled: s.db != nil,
	}
}

// CleanupOldEvents removes persisted events older than the retention period.
func (s *EventService) CleanupOldEvents(ctx context.Context) error {
	if s.db == nil || s.cfg.RetentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays).UTC()
	result, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE timestamp < ?", cutoff)
	if err != nil {
		return fmt.Errorf("delete old events: %w", err)
	}

	if deleted, _ := result.RowsAffected(); deleted > 0 {
		s.logger.Info("cleaned up old events", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}
