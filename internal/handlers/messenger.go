package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger/internal/chat"
)

// StatsSource reports store sizes.
type StatsSource interface {
	Stats() chat.Stats
}

// MessengerHandler serves read-only views of the messenger.
type MessengerHandler struct {
	stats StatsSource
}

// NewMessengerHandler builds a MessengerHandler.
func NewMessengerHandler(stats StatsSource) *MessengerHandler {
	return &MessengerHandler{stats: stats}
}

// ListChannels returns the fixed public channels.
func (h *MessengerHandler) ListChannels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": chat.Channels()})
}

// Stats returns counts of users, sessions, conversations and messages.
func (h *MessengerHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Stats())
}

// Health reports that the process is up.
func (h *MessengerHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
