package shared

import "context"

// EventPublisher publishes domain events once the state change that raised them is committed
type EventPublisher interface {
	// Publish publishes one or more domain events
	Publish(ctx context.Context, events ...DomainEvent) error
}
