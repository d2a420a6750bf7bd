package middleware

import (
	"net/http"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// redactedHeaders are never written to logs. The payment header carries a
// signed mandate.
var redactedHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,

	http.CanonicalHeaderKey(constants.PaymentHeader): true,
}

// RequestLoggingMiddleware logs one line per request once it completes.
// With verbose set, request headers are included with sensitive values redacted.
func RequestLoggingMiddleware(verbose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log := LogWithCorrelationID(c.Request.Context())
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if verbose {
			fields = append(fields, zap.Object("headers", newHeaderFields(c)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("Request completed", fields...)
		case status >= 400:
			log.Warn("Request completed", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}

// headerFields encodes request headers lazily, only if the entry is written.
type headerFields struct{ c *gin.Context }

func (h headerFields) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for key, values := range h.c.Request.Header {
		if len(values) == 0 {
			continue
		}
		if redactedHeaders[http.CanonicalHeaderKey(key)] {
			enc.AddString(key, "[REDACTED]")
			continue
		}
		enc.AddString(key, values[0])
	}
	return nil
}

func newHeaderFields(c *gin.Context) headerFields { return headerFields{c: c} }
