package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adelfree2023-dev/storefront-engine/pkg/database"
	"github.com/adelfree2023-dev/storefront-engine/pkg/response"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db *database.PostgresDB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Live reports process liveness
// GET /health
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ok"}))
}

// Ready reports readiness, including database connectivity
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.Error("SERVICE_UNAVAILABLE", "database unreachable"))
			return
		}
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ready"}))
}
