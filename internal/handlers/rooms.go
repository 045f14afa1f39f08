package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"room-chat-service/internal/chat"
)

// RoomHandler serves read-only views of rooms.
type RoomHandler struct {
	service *chat.Service
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(service *chat.Service) *RoomHandler {
	return &RoomHandler{service: service}
}

// ListRooms handles GET /rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.service.Rooms().Rooms()})
}

// GetPublicMessages handles GET /rooms/public/messages.
func (h *RoomHandler) GetPublicMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.service.Rooms().Default().History()})
}

// GetPrivateMessages handles GET /rooms/private/:room_id/messages. Reading
// never creates a room.
func (h *RoomHandler) GetPrivateMessages(c *gin.Context) {
	roomID := c.Param("room_id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	room, ok := h.service.Rooms().Lookup(roomID, true)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": chat.ErrRoomNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": room.History()})
}

// Health handles GET /healthz.
func (h *RoomHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": h.service.Registry().Len(),
		"rooms":       h.service.Rooms().Len(),
	})
}
