package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openmes/batch-record-api/internal/system/constants"
)

// ContextKeyCorrelationID is the gin context key holding the request correlation ID.
const ContextKeyCorrelationID = "correlation_id"

// ContextKeyActor is the gin context key holding the acting user ID.
const ContextKeyActor = "actor_id"

func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := extractCorrelationID(c)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set(ContextKeyCorrelationID, correlationID)
		c.Header(constants.CorrelationIDHeaderName, correlationID)
		c.Next()
	}
}

func extractCorrelationID(c *gin.Context) string {
	headers := []string{constants.CorrelationIDHeaderName, "X-Request-ID", "X-Trace-ID"}
	for _, header := range headers {
		if id := c.GetHeader(header); id != "" {
			return id
		}
	}
	return ""
}

// ActorMiddleware resolves the acting user from the X-Actor-ID header so
// handlers can fall back to it when a request body omits the actor.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := c.GetHeader(constants.ActorHeaderName); actor != "" {
			c.Set(ContextKeyActor, actor)
		}
		c.Next()
	}
}
