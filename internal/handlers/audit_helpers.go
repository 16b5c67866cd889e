package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// operatorFromContext returns the operator name set by AdminAuth, if any.
func operatorFromContext(c *gin.Context) *string {
	if val, ok := c.Get("operator"); ok {
		if name, ok := val.(string); ok && name != "" {
			return &name
		}
	}
	return nil
}
