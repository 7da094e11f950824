package event

import (
	"context"
	"io"

	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LogPublisher writes domain events to the application log.
// It stands in for Kafka in development and single-node deployments.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger.Named("events")}
}

// Publish logs each event
func (p *LogPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		p.logger.Info("Domain event",
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
			zap.String("aggregate_type", e.AggregateType()),
			zap.String("aggregate_id", e.AggregateID().String()),
			zap.Any("event", e))
	}
	return nil
}

// Close is a no-op
func (p *LogPublisher) Close() error {
	return nil
}

var _ shared.EventPublisher = (*LogPublisher)(nil)

// Publisher is an EventPublisher that holds resources
type Publisher interface {
	shared.EventPublisher
	io.Closer
}

// NewPublisher returns a Kafka publisher when Kafka is enabled, otherwise a LogPublisher
func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NewLogPublisher(logger), nil
	}
	return NewKafkaPublisher(cfg, logger)
}
