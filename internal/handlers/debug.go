package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"room-chat-service/internal/chat"
	"room-chat-service/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, service *chat.Service, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/connections", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"connections": service.Registry().Snapshot()})
	})

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), "", nil)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
