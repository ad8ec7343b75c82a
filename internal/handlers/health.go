package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"CAMPUSMARKET_BACK-END/internal/dto"
	"CAMPUSMARKET_BACK-END/internal/utils"
)

const serviceName = "campusmarket-backend"

// HealthHandler reports service and database health
type HealthHandler struct {
	db      *pgxpool.Pool
	started time.Time
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(db *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// HealthCheck reports overall service status without touching the database
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{
		Service: serviceName,
		Status:  "ok",
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// LivenessCheck reports process liveness
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{
		Service: serviceName,
		Status:  "alive",
	})
}

// ReadinessCheck reports readiness, including database connectivity
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, dto.HealthResponse{
			Service: serviceName,
			Status:  "degraded",
			Details: map[string]any{"db": err.Error()},
		})
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{
		Service: serviceName,
		Status:  "ready",
		Details: map[string]any{"db": "ok"},
	})
}
