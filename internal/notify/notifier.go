// Package notify delivers finalized alerts to external destinations.
// Delivery is best-effort: the alert store stays authoritative and a failed
// delivery never affects it.
package notify

import (
	"context"

	"dabmon/internal/alerts"
)

// Notifier delivers a single alert to one destination.
type Notifier interface {
	// Name identifies the destination for logging.
	Name() string

	// Deliver sends the alert. The context carries the delivery timeout.
	Deliver(ctx context.Context, a alerts.Alert) error
}
