// Package middleware contains HTTP middleware for the Gin router.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"returnsdesk/src/infra/logger"
)

// RequestIDHeader is the HTTP header used for request tracing.
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the context key for storing the request ID.
const RequestIDKey = "request_id"

// RequestID is a middleware that injects a unique request ID into each request.
// If the incoming request already has an X-Request-ID header, it will be reused.
// Otherwise, a new UUID is generated.
//
// The request ID is stored in the Gin context, in the request's
// context.Context (see logger.RequestIDFromContext) and in the response headers.
//
// Usage:
//
//	router.Use(middleware.RequestID())
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context.
// Returns empty string if not set.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if requestID, ok := id.(string); ok {
			return requestID
		}
	}
	return ""
}
