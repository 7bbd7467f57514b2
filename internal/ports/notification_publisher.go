package ports

import (
	"context"

	domain "techrank/internal/domain/performance"
)

// NotificationPublisher pushes a stored notification to live subscribers.
// Delivery is best-effort; the stored row is the source of truth.
type NotificationPublisher interface {
	Publish(ctx context.Context, notification domain.Notification) error
}
