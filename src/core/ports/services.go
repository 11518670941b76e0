package ports

import (
	"context"

	"returnsdesk/src/core/domain"
)

// ExternalService is the base interface for external service adapters.
type ExternalService interface {
	// Health checks if the external service is reachable.
	Health(ctx context.Context) error
}

// Notifier is the side channel the return form reports outcomes through.
type Notifier interface {
	Notify(n domain.Notification)
}
