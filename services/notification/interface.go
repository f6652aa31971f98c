package notification

import (
	"context"

	"vendly/models"
)

// Notifier receives booking lifecycle events. Delivery channel and template
// rendering are external concerns; the engine only emits structured events.
type Notifier interface {
	Notify(ctx context.Context, recipient models.Recipient, event models.EventKind, data map[string]string) error
}
