package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/iconidentify/tikgrab/internal/downloader"
	"github.com/iconidentify/tikgrab/internal/repository"
	"github.com/iconidentify/tikgrab/internal/service"
)

var startTime = time.Now()

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	sessions    repository.SessionRepository
	eventSvc    *service.EventService
	storagePath string
	minFree     int64
}

// NewHealthHandler creates a new health handler. eventSvc may be nil.
// minFree is the free-space floor downloads into storagePath enforce.
func NewHealthHandler(sessions repository.SessionRepository, eventSvc *service.EventService, storagePath string, minFree int64) *HealthHandler {
	return &HealthHandler{
		sessions:    sessions,
		eventSvc:    eventSvc,
		storagePath: storagePath,
		minFree:     minFree,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Sessions  *repository.SessionStats `json:"sessions,omitempty"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.sessions.Stats(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "error",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Sessions:  stats,
	})
}

// SystemStats contains system resource statistics.
type SystemStats struct {
	Uptime         int64                    `json:"uptime_seconds"`
	UptimeHuman    string                   `json:"uptime_human"`
	MemAllocMB     int64                    `json:"mem_alloc_mb"`
	MemSysMB       int64                    `json:"mem_sys_mb"`
	NumGoroutines  int                      `json:"num_goroutines"`
	NumCPU         int                      `json:"num_cpu"`
	DiskFreeBytes  int64                    `json:"disk_free_bytes"`
	DiskTotalBytes int64                    `json:"disk_total_bytes"`
	DiskUsedPct    float64                  `json:"disk_used_pct"`
	MinFreeBytes   int64                    `json:"min_free_bytes"`
	LowSpace       bool                     `json:"low_space"`
	StoragePath    string                   `json:"storage_path"`
	Sessions       *repository.SessionStats `json:"sessions,omitempty"`
	Events         *service.EventStats      `json:"events,omitempty"`
}

// Stats handles GET /api/v1/stats - system statistics.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(startTime)

	stats := SystemStats{
		Uptime:        int64(uptime.Seconds()),
		UptimeHuman:   formatUptime(uptime),
		MemAllocMB:    int64(m.Alloc / 1024 / 1024),
		MemSysMB:      int64(m.Sys / 1024 / 1024),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MinFreeBytes:  h.minFree,
		StoragePath:   h.storagePath,
	}

	// Downloads create the directory on first use; until then it has no usage.
	if h.storagePath != "" {
		if usage, err := downloader.StatDisk(h.storagePath); err == nil {
			stats.DiskTotalBytes = usage.TotalBytes
			stats.DiskFreeBytes = usage.FreeBytes
			stats.DiskUsedPct = usage.UsedPct()
			stats.LowSpace = usage.Below(h.minFree)
		}
	}

	if sessions, err := h.sessions.Stats(r.Context()); err == nil {
		stats.Sessions = sessions
	}
	if h.eventSvc != nil {
		es := h.eventSvc.Stats()
		stats.Events = &es
	}

	writeJSON(w, http.StatusOK, stats)
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
