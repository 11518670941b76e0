package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"returnsdesk/src/app/http/response"
)

// Recovery is a middleware that recovers from panics and returns a 500 error.
// It logs the panic with stack trace for debugging.
//
// This should be the first middleware in the chain to catch all panics,
// including ones raised while refreshing the session in the edge filter.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)

				log.Error("panic recovered",
					"request_id", requestID,
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"stack", string(debug.Stack()),
				)

				// Don't expose internal details to the client
				response.InternalError(c, requestID)
				c.Abort()
			}
		}()

		c.Next()
	}
}
