// Package event ships committed domain events to Kafka, or to the log when Kafka is disabled.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// SchemaVersion is bumped when the envelope layout changes incompatibly
const SchemaVersion = 1

// Envelope is the wire format of a published event.
// Consumers route on Type and decode Payload into the matching event struct.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	SchemaVersion int             `json:"schema_version"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a domain event for publishing
func NewEnvelope(e shared.DomainEvent) (*Envelope, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.EventType(), err)
	}
	return &Envelope{
		ID:            e.EventID(),
		Type:          e.EventType(),
		SchemaVersion: SchemaVersion,
		AggregateType: e.AggregateType(),
		AggregateID:   e.AggregateID(),
		OccurredAt:    e.OccurredAt().UTC(),
		Payload:       payload,
	}, nil
}

// Encode returns the JSON encoding of the envelope
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
