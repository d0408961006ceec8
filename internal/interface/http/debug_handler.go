package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tonearm/tonearm/pkg/response"
)

// DebugHandler serves the root banner and the storage liveness probe.
type DebugHandler struct {
	Pool *pgxpool.Pool
}

func NewDebugHandler(pool *pgxpool.Pool) *DebugHandler {
	return &DebugHandler{Pool: pool}
}

func (h *DebugHandler) Root(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"message": "API is running 🎶"})
}

// PingDB reports connectivity with the raw driver error in the body.
// Probes always answer 200 so monitors distinguish "API down" from
// "database down" by payload, not status code.
func (h *DebugHandler) PingDB(c *gin.Context) {
	if h.Pool == nil {
		response.JSON(c, http.StatusOK, gin.H{"status": "error", "detail": "database pool is not configured"})
		return
	}
	if err := h.Pool.Ping(c.Request.Context()); err != nil {
		response.JSON(c, http.StatusOK, gin.H{"status": "error", "detail": err.Error()})
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ok", "db": "connected"})
}
