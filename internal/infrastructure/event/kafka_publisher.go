package event

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// KafkaPublisher publishes domain events to a Kafka topic.
// Messages are keyed by aggregate id so every event of one bill lands on one partition, in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaPublisher dials the configured brokers
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	saramaCfg, err := producerConfig(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.Topic, logger), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func producerConfig(cfg config.KafkaConfig) (*sarama.Config, error) {
	acks, err := parseRequiredAcks(cfg.RequiredAcks)
	if err != nil {
		return nil, err
	}

	c := sarama.NewConfig()
	c.ClientID = cfg.ClientID
	c.Producer.RequiredAcks = acks
	c.Producer.Retry.Max = cfg.MaxRetries
	c.Producer.Idempotent = acks == sarama.WaitForAll
	if c.Producer.Idempotent {
		c.Net.MaxOpenRequests = 1
		c.Version = sarama.V2_1_0_0
	}
	// required by SyncProducer
	c.Producer.Return.Successes = true
	c.Producer.Return.Errors = true
	return c, nil
}

func parseRequiredAcks(v string) (sarama.RequiredAcks, error) {
	switch strings.ToLower(v) {
	case "none":
		return sarama.NoResponse, nil
	case "leader", "1":
		return sarama.WaitForLocal, nil
	case "", "all", "-1":
		return sarama.WaitForAll, nil
	default:
		return sarama.WaitForAll, fmt.Errorf("invalid kafka required_acks: %s", v)
	}
}

// Publish sends every event; all events are attempted even if one fails
func (p *KafkaPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, e := range events {
		env, err := NewEnvelope(e)
		if err != nil {
			return err
		}
		body, err := env.Encode()
		if err != nil {
			return err
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(env.AggregateID.String()),
			Value: sarama.ByteEncoder(body),
			Headers: []sarama.RecordHeader{
				{Key: []byte("event_type"), Value: []byte(env.Type)},
				{Key: []byte("event_id"), Value: []byte(env.ID.String())},
			},
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		var perrs sarama.ProducerErrors
		if errors.As(err, &perrs) {
			for _, perr := range perrs {
				p.logger.Error("Failed to publish event",
					zap.String("topic", p.topic),
					zap.Error(perr.Err))
			}
		}
		return fmt.Errorf("failed to publish %d events: %w", len(msgs), err)
	}

	for _, m := range msgs {
		p.logger.Debug("Event published",
			zap.String("topic", m.Topic),
			zap.Int32("partition", m.Partition),
			zap.Int64("offset", m.Offset))
	}
	return nil
}

// Close flushes and closes the producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)
