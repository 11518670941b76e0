package usecase

import (
	"context"
	"log/slog"
	"sort"

	"returnsdesk/src/core/ports"
)

// HealthService reports the health of the services the edge depends on.
type HealthService struct {
	log  *slog.Logger
	deps map[string]ports.ExternalService
}

// NewHealthService creates a new HealthService. Nil dependencies are skipped.
func NewHealthService(log *slog.Logger, deps map[string]ports.ExternalService) *HealthService {
	checked := make(map[string]ports.ExternalService, len(deps))
	for name, dep := range deps {
		if dep != nil {
			checked[name] = dep
		}
	}
	return &HealthService{
		log:  log,
		deps: checked,
	}
}

// HealthStatus represents the health of the application.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Check performs a health check of all registered dependencies.
// A failing dependency marks the whole status as degraded.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "ok",
		Components: make(map[string]ComponentHealth, len(s.deps)),
	}

	names := make([]string, 0, len(s.deps))
	for name := range s.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.deps[name].Health(ctx); err != nil {
			status.Status = "degraded"
			status.Components[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
			s.log.WarnContext(ctx, "dependency unhealthy", "component", name, "error", err)
			continue
		}
		status.Components[name] = ComponentHealth{Status: "healthy"}
	}

	return status
}
