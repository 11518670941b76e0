// Package handler contains HTTP handlers for the API.
// Handlers are responsible for:
// - Parsing and validating HTTP requests
// - Calling use case methods
// - Converting results to HTTP responses
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"returnsdesk/src/core/usecase"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	healthService *usecase.HealthService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(healthService *usecase.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health returns the health status of the application.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// DetailedHealth returns the status of the identity provider and the
// session cache. A degraded status answers 503.
// GET /health/detailed
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	status := h.healthService.Check(c.Request.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

