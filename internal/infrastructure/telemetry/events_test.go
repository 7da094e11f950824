package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

type stubPublisher struct{ err error }

func (p stubPublisher) Publish(context.Context, ...shared.DomainEvent) error { return p.err }

func newEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Bill", uuid.New())
	return &e
}

func TestInstrumentPublisher_CountsByTypeAndOutcome(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()
	meter := provider.Meter("test")
	ctx := context.Background()

	ok := telemetry.InstrumentPublisher(stubPublisher{}, meter, zap.NewNop())
	require.NoError(t, ok.Publish(ctx, newEvent("BillGenerated"), newEvent("BillGenerated")))

	broken := telemetry.InstrumentPublisher(stubPublisher{err: errors.New("broker down")}, meter, zap.NewNop())
	assert.Error(t, broken.Publish(ctx, newEvent("PaymentRecorded")))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	sum, isSum := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, isSum)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		eventType, _ := dp.Attributes.Value(attribute.Key("event.type"))
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		counts[eventType.AsString()+"/"+outcome.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{
		"BillGenerated/ok":      2,
		"PaymentRecorded/error": 1,
	}, counts)
}
