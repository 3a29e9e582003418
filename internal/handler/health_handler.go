package handler

import (
	"context"
	"net/http"
	"time"

	"blood-request-coordinator/internal/store"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{store: st}
}

// Health reports the process as healthy and the store as one of
// "ok", "not_configured" or "unreachable".
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	storeState := "ok"

	if h.store == nil {
		storeState = "not_configured"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			_ = c.Error(err)
			status = http.StatusServiceUnavailable
			storeState = "unreachable"
		}
	}

	c.JSON(status, gin.H{
		"success": status == http.StatusOK,
		"data": gin.H{
			"status":  "healthy",
			"service": "blood-request-coordinator",
			"store":   storeState,
		},
	})
}
