package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "RequestID"
	loggerKey       = "logger"
)

// RequestTracker tracks active connections
func RequestTracker() gin.HandlerFunc {
	return func(c *gin.Context) {
		observability.ActiveConnections.Inc()
		defer observability.ActiveConnections.Dec()
		c.Next()
	}
}

// RequestID adds a unique request ID to the context and response headers.
// An incoming X-Request-ID is reused only when it parses as a UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// RequestLogger stores a logger tagged with the request ID in the context
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(loggerKey, observability.Logger().With(zap.String("request_id", GetRequestID(c))))
		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID, or an empty string
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// LoggerFrom returns the request-scoped logger, falling back to the global one
func LoggerFrom(c *gin.Context) *logging.SafeLogger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logging.SafeLogger); ok {
			return l
		}
	}
	return observability.Logger()
}
