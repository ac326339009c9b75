package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/downloader"
	"github.com/iconidentify/tikgrab/internal/service"
)

const (
	// SessionHeader carries the client session ID.
	SessionHeader = "X-Session-ID"
	// SessionCookie carries the client session ID for browsers.
	SessionCookie = "tikgrab_session"

	maxRequestBody = 64 << 10
)

// ResolveHandler handles resolve-related HTTP requests.
type ResolveHandler struct {
	resolveSvc *service.ResolveService
	downloader downloader.Downloader
	events     domain.EventEmitter
	logger     *slog.Logger
}

// NewResolveHandler creates a new resolve handler. events may be nil.
func NewResolveHandler(
	resolveSvc *service.ResolveService,
	dl downloader.Downloader,
	events domain.EventEmitter,
	logger *slog.Logger,
) *ResolveHandler {
	return &ResolveHandler{
		resolveSvc: resolveSvc,
		downloader: dl,
		events:     events,
		logger:     logger,
	}
}

// ResolveRequest is the JSON request body for resolving a URL.
type ResolveRequest struct {
	URL string `json:"url"`
}

// DescriptorResponse is a resolved descriptor with its display fields.
type DescriptorResponse struct {
	*domain.Descriptor
	DisplayTitle  string `json:"display_title"`
	DisplayAuthor string `json:"display_author"`
	ContentType   string `json:"content_type"`
}

func newDescriptorResponse(d *domain.Descriptor) DescriptorResponse {
	return DescriptorResponse{
		Descriptor:    d,
		DisplayTitle:  d.DisplayTitle(),
		DisplayAuthor: d.DisplayAuthor(),
		ContentType:   d.ContentType(),
	}
}

// Resolve handles POST /api/v1/resolve
//
// A request replaced by a newer one from the same session gets 204.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	var req ResolveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.resolveSvc.ResolveFor(r.Context(), sessionID, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyURL), errors.Is(err, domain.ErrInvalidURL):
			writeError(w, http.StatusBadRequest, domain.UserMessage(err))
		case domain.IsSilent(err):
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, domain.ErrFetchFailed):
			writeError(w, http.StatusBadGateway, domain.UserMessage(err))
		default:
			h.logger.Error("resolve failed", "session_id", sessionID, "error", err)
			writeError(w, http.StatusInternalServerError, domain.MsgGeneric)
		}
		return
	}

	writeJSON(w, http.StatusOK, newDescriptorResponse(d))
}

// Current handles GET /api/v1/current
func (h *ResolveHandler) Current(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	d, err := h.resolveSvc.Current(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrNoCurrent) {
			writeError(w, http.StatusNotFound, "no content resolved")
			return
		}
		writeError(w, http.StatusInternalServerError, domain.MsgGeneric)
		return
	}

	writeJSON(w, http.StatusOK, newDescriptorResponse(d))
}

// Media handles GET /api/v1/media?url=...&download=1
// Only URLs referenced by the session's current result are served.
func (h *ResolveHandler) Media(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	mediaURL := r.URL.Query().Get("url")
	if mediaURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	d, err := h.resolveSvc.Current(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "no content resolved")
		return
	}
	if !d.References(mediaURL) {
		writeError(w, http.StatusForbidden, domain.ErrMediaNotAllowed.Error())
		return
	}

	body, size, contentType, err := h.downloader.Download(r.Context(), mediaURL)
	if err != nil {
		switch {
		case r.Context().Err() != nil:
			return
		case errors.Is(err, domain.ErrURLExpired):
			writeError(w, http.StatusGone, domain.ErrURLExpired.Error())
		default:
			h.logger.Warn("media fetch failed", "session_id", sessionID, "error", err)
			writeError(w, http.StatusBadGateway, "failed to fetch media")
		}
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", mediaFilename(d, mediaURL)))
	}
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, body)
	if err != nil {
		if r.Context().Err() == nil {
			h.logger.Warn("media stream interrupted", "session_id", sessionID, "error", err)
		}
		return
	}

	if h.events != nil && r.URL.Query().Get("download") != "" {
		h.events.Emit(domain.Event{
			Severity: domain.EventSeveritySuccess,
			Category: domain.EventCategoryDownload,
			Source:   "media",
			Message:  "media downloaded",
			Metadata: domain.EventMetadata{
				"session_id": sessionID,
				"bytes":      written,
				"is_photo":   d.IsPhoto,
			}.ToJSON(),
		})
	}
}

// sessionID returns the caller's session ID, issuing a new one when the
// request carries none.
func (h *ResolveHandler) sessionID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(SessionHeader, id)
	return id
}

func mediaFilename(d *domain.Descriptor, mediaURL string) string {
	base := downloader.FileBase("", d, time.Now())
	if mediaURL == d.ThumbnailURL {
		return base + "_cover.jpg"
	}
	if !d.IsPhoto {
		return base + ".mp4"
	}
	for i, img := range d.Images {
		if img == mediaURL {
			return fmt.Sprintf("%s_%02d.jpg", base, i+1)
		}
	}
	return base + ".jpg"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
