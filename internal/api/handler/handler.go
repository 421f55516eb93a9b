// Package handler exposes a small operational HTTP API next to the bot:
// liveness probes plus JWT-protected stats for dashboards.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anonpair/backend/internal/storage"
)

// Handler serves the operational endpoints.
type Handler struct {
	Storage   storage.Storage
	jwtSecret []byte
}

func NewHandler(s storage.Storage, jwtSecret string) *Handler {
	return &Handler{Storage: s, jwtSecret: []byte(jwtSecret)}
}

// Register mounts all routes on the given engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.Health)
	r.GET("/health", h.Health)
	r.GET("/token", h.IssueToken)
	r.GET("/stats", h.requireToken, h.GetStats)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStats returns bot-wide counters. Requires a valid token.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Storage.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_users":  stats.TotalUsers,
		"active_chats": stats.ActiveChats,
		"in_queue":     stats.InQueue,
	})
}
