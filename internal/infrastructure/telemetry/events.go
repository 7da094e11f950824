package telemetry

import (
	"context"

	"github.com/utilitrack/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var (
	AttrEventType = attribute.Key("event.type")
	AttrOutcome   = attribute.Key("outcome")
)

// InstrumentedPublisher counts the domain events (BillGenerated, PaymentRecorded
// and so on) handed to the wrapped publisher, by type and outcome.
type InstrumentedPublisher struct {
	next      shared.EventPublisher
	published *Counter
}

// InstrumentPublisher wraps next. If the counter cannot be created next is returned as is.
func InstrumentPublisher(next shared.EventPublisher, meter metric.Meter, log *zap.Logger) shared.EventPublisher {
	published, err := NewCounter(meter, "utilitrack.events.published",
		"Domain events handed to the event publisher", "{event}")
	if err != nil {
		log.Warn("Event metrics disabled", zap.Error(err))
		return next
	}
	return &InstrumentedPublisher{next: next, published: published}
}

func (p *InstrumentedPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	err := p.next.Publish(ctx, events...)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	for _, e := range events {
		p.published.Inc(ctx, AttrEventType.String(e.EventType()), AttrOutcome.String(outcome))
	}
	return err
}
