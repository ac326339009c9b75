package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/service"
)

// EventHandler handles event-related HTTP requests.
type EventHandler struct {
	eventSvc *service.EventService
	logger   *slog.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(eventSvc *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventSvc: eventSvc,
		logger:   logger,
	}
}

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Severity  string          `json:"severity"`
	Category  string          `json:"category"`
	Message   string          `json:"message"`
	Source    string          `json:"source,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// EventListResponse contains paginated event list.
type EventListResponse struct {
	Events  []EventResponse `json:"events"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	HasMore bool            `json:"has_more"`
}

// EventStatsResponse contains event service statistics.
type EventStatsResponse struct {
	Total         int            `json:"total"`
	BySeverity    map[string]int `json:"by_severity"`
	BufferSize    int            `json:"buffer_size"`
	BufferUsed    int            `json:"buffer_used"`
	SQLiteEnabled bool           `json:"sqlite_enabled"`
}

// List handles GET /api/v1/events
// Query parameters:
//   - severity: filter by severity (info, warning, error, success)
//   - category: filter by category (resolve, download, session, system)
//   - source: filter by source component
//   - limit: max events to return (default 50, max 200)
//   - offset: pagination offset
//   - historical: if "true", query SQLite instead of ring buffer
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.EventQuery{Limit: 50}

	if l := q.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			query.Limit = min(parsed, 200)
		}
	}
	if o := q.Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			query.Offset = parsed
		}
	}

	if sev := q.Get("severity"); sev != "" {
		severity := domain.EventSeverity(sev)
		query.Filter.Severity = &severity
	}
	if cat := q.Get("category"); cat != "" {
		category := domain.EventCategory(cat)
		query.Filter.Category = &category
	}
	query.Filter.Source = q.Get("source")

	var result *domain.EventQueryResult
	var err error
	if q.Get("historical") == "true" {
		result, err = h.eventSvc.QueryHistorical(r.Context(), query)
	} else {
		result, err = h.eventSvc.Query(r.Context(), query)
	}
	if err != nil {
		h.logger.Error("failed to query events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query events")
		return
	}

	response := EventListResponse{
		Events:  make([]EventResponse, 0, len(result.Events)),
		Total:   result.Total,
		Limit:   query.Limit,
		Offset:  query.Offset,
		HasMore: result.HasMore,
	}
	for _, e := range result.Events {
		response.Events = append(response.Events, toEventResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

// Stats handles GET /api/v1/events/stats
func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.eventSvc.Stats()

	bySeverity := map[string]int{}
	total := 0
	for _, sev := range severities {
		s := sev
		res, err := h.eventSvc.Query(r.Context(), domain.EventQuery{Filter: domain.EventFilter{Severity: &s}, Limit: 1})
		if err != nil {
			continue
		}
		bySeverity[string(sev)] = res.Total
		total += res.Total
	}

	writeJSON(w, http.StatusOK, EventStatsResponse{
		Total:         total,
		BySeverity:    bySeverity,
		BufferSize:    stats.BufferSize,
		BufferUsed:    stats.BufferUsed,
		SQLiteEnabled: stats.SQLiteEnabled,
	})
}

var severities = []domain.EventSeverity{
	domain.EventSeverityInfo,
	domain.EventSeverityWarning,
	domain.EventSeverityError,
	domain.EventSeveritySuccess,
}

// Categories handles GET /api/v1/events/categories
func (h *EventHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := []string{
		string(domain.EventCategoryResolve),
		string(domain.EventCategoryDownload),
		string(domain.EventCategorySession),
		string(domain.EventCategorySystem),
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

func toEventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:        string(e.ID),
		Timestamp: e.Timestamp,
		Severity:  string(e.Severity),
		Category:  string(e.Category),
		Message:   e.Message,
		Source:    e.Source,
		Metadata:  e.Metadata,
	}
}
