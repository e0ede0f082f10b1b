package ports

import (
	"context"

	"storefront-relay/internal/domain"
)

// StatusNotifier delivers activation status to the ad platform
type StatusNotifier interface {
	SendStatus(ctx context.Context, endpoint string, status domain.StatusNotification) error
}

// EventTap receives every emitted pixel for live inspection
type EventTap interface {
	Publish(event *domain.TrackingEvent)
}
