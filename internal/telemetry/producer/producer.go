// Package producer defines the interface for publishing domain events to a broker (e.g. Kafka).
package producer

import (
	"context"

	"task-manager/backend/internal/telemetry"
)

// Producer publishes domain events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly; call through telemetry.EmitAsync.
	Emit(ctx context.Context, event *telemetry.Event) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
