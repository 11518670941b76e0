package middleware

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"returnsdesk/src/app/http/response"
)

// RateLimitConfig holds rate limiter settings.
type RateLimitConfig struct {
	Rate       rate.Limit
	Burst      int
	StaleAfter time.Duration
	CleanEvery time.Duration

	// Prefixes restricts limiting to paths starting with one of them.
	// Empty limits every path.
	Prefixes []string
}

func (cfg RateLimitConfig) applies(path string) bool {
	if len(cfg.Prefixes) == 0 {
		return true
	}
	for _, p := range cfg.Prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns per-client-IP rate limiting middleware.
// The client IP comes from gin's ClientIP, so forwarded headers only count
// when the engine trusts the sending proxy (see Engine.SetTrustedProxies).
// The ctx parameter controls the lifetime of the background cleanup goroutine.
func RateLimit(ctx context.Context, cfg RateLimitConfig, log *slog.Logger) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 5 * time.Minute
	}
	if cfg.CleanEvery <= 0 {
		cfg.CleanEvery = 3 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(cfg.CleanEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				for ip, v := range visitors {
					if time.Since(v.lastSeen) > cfg.StaleAfter {
						delete(visitors, ip)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(c *gin.Context) {
		if !cfg.applies(c.Request.URL.Path) {
			c.Next()
			return
		}

		ip := c.ClientIP()

		mu.Lock()
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(cfg.Rate, cfg.Burst)}
			visitors[ip] = v
		}
		v.lastSeen = time.Now()
		mu.Unlock()

		if !v.limiter.Allow() {
			log.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path, "request_id", GetRequestID(c))
			response.TooManyRequests(c, GetRequestID(c))
			c.Abort()
			return
		}

		c.Next()
	}
}
