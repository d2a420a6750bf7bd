package middleware

import (
	"context"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	correlationIDKey       = "correlationID"
	maxCorrelationIDLength = 128
)

type correlationIDContextKey struct{}

// CorrelationIDMiddleware tags each request with an id that follows a purchase
// attempt through the engine, ledger and notification logs. A caller supplied
// X-Correlation-ID is reused when it is a plain token; anything else is replaced
// so it cannot forge log lines.
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(constants.CorrelationIDHeader)
		if !validCorrelationID(correlationID) {
			correlationID = uuid.New().String()
		}

		c.Set(correlationIDKey, correlationID)
		c.Header(constants.CorrelationIDHeader, correlationID)
		c.Request = c.Request.WithContext(WithCorrelationID(c.Request.Context(), correlationID))

		c.Next()
	}
}

// validCorrelationID accepts 1 to 128 characters of letters, digits and . _ : -
func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}

// GetCorrelationID returns the request's correlation id from the gin context.
func GetCorrelationID(c *gin.Context) string {
	id, _ := c.Get(correlationIDKey)
	correlationID, _ := id.(string)
	return correlationID
}

// WithCorrelationID attaches a correlation id to ctx.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey{}, correlationID)
}

// CorrelationIDFromContext returns the correlation id attached to ctx, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	correlationID, _ := ctx.Value(correlationIDContextKey{}).(string)
	return correlationID
}

// LogWithCorrelationID returns the global logger tagged with the correlation id
// carried by ctx.
func LogWithCorrelationID(ctx context.Context) *zap.Logger {
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		return logger.Log.With(zap.String("correlation_id", correlationID))
	}
	return logger.Log
}
