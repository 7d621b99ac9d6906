package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vaughan-dsouza/postsvc/internal/logger"
	"github.com/vaughan-dsouza/postsvc/internal/utils"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB pinger
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{DB: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		logger.FromContext(r.Context()).Warn("health check failed", "error", err)
		utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
