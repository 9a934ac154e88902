package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/salesloop/crm-backend/internal/authz"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// cacheStatsProvider is satisfied by the caching decision engine. A nil
// provider just omits the cache component from the report.
type cacheStatsProvider interface {
	Stats() authz.CacheStats
}

type HealthHandler struct {
	db    *sql.DB
	cache cacheStatsProvider
}

func NewHealthHandler(db *sql.DB, cache cacheStatsProvider) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// HandleLiveness → just says service is up
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleReadiness → checks DB connection and reports decision cache counters
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	dbEntry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err != nil {
		dbEntry.Status = HealthUnhealthy
		dbEntry.Message = err.Error()
	}

	components := map[string]CheckEntry{"postgres": dbEntry}

	if h.cache != nil {
		stats := h.cache.Stats()
		components["decision_cache"] = CheckEntry{
			Status:    HealthHealthy,
			CheckedAt: time.Now(),
			Details: map[string]any{
				"hits":     stats.Hits,
				"misses":   stats.Misses,
				"hit_rate": stats.HitRate,
				"entries":  stats.Entries,
			},
		}
	}

	resp := HealthResponse{
		Status:     dbEntry.Status,
		CheckedAt:  time.Now(),
		Components: components,
	}

	statusCode := http.StatusOK
	if dbEntry.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
