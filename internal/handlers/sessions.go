package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"room-chat-service/internal/repositories"
)

const (
	defaultSessionLimit = 50
	maxSessionLimit     = 500
)

// SessionHandler exposes the connection session log.
type SessionHandler struct {
	sessions repositories.SessionRepository
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions repositories.SessionRepository) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// ListSessions handles GET /sessions?limit=n.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	limit := defaultSessionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > maxSessionLimit {
		limit = maxSessionLimit
	}

	sessions, err := h.sessions.RecentSessions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
