package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"returnsdesk/src/core/domain"
)

// Logging emits one line per request once the chain has finished.
// Bodies are not logged: return drafts carry customer contact details.
func Logging(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		c.Next()

		status := c.Writer.Status()
		session := "-"
		if v, ok := c.Get(SessionOutcomeKey); ok {
			if outcome, ok := v.(domain.RefreshOutcome); ok {
				session = outcome.String()
			}
		}

		logLine := fmt.Sprintf("%s | %s | %s | %s %s | %d | %s | session: %s |",
			start.Format(time.RFC3339Nano),
			levelString(status),
			GetRequestID(c),
			c.Request.Method,
			path,
			status,
			time.Since(start).Round(time.Microsecond),
			session,
		)

		switch {
		case status >= 500:
			log.Error(logLine)
		case status >= 400:
			log.Warn(logLine)
		default:
			log.Info(logLine)
		}
	}
}

func levelString(status int) string {
	switch {
	case status >= 500:
		return "ERROR"
	case status >= 400:
		return "WARN"
	default:
		return "INFO"
	}
}
