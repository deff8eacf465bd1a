package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/frontdesk/backend/internal/application/frontdesk"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/frontdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

var at = time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC)

func newMetrics(t *testing.T) (*telemetry.FrontDeskMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewFrontDeskMetrics(provider.Meter("frontdesk"), "VND", zap.NewNop())
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func base(eventType string) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, room.AggregateTypeRoom, uuid.New(), at)
}

func TestNewFrontDeskMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewFrontDeskMetrics(nil, "VND", nil)
	require.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, m)
}

func TestFrontDeskMetrics_Handle(t *testing.T) {
	m, reader := newMetrics(t)
	ctx := context.Background()

	require.NoError(t, m.Handle(ctx, &room.RoomCheckedInEvent{
		BaseDomainEvent: base(room.EventTypeRoomCheckedIn),
		RentalType:      room.RentalHourly,
	}))
	require.NoError(t, m.Handle(ctx, &room.RoomCheckedInEvent{
		BaseDomainEvent: base(room.EventTypeRoomCheckedIn),
		RentalType:      room.RentalHourly,
	}))
	require.NoError(t, m.Handle(ctx, &room.RoomCheckedOutEvent{
		BaseDomainEvent: base(room.EventTypeRoomCheckedOut),
		RentalType:      room.RentalDaily,
		Total:           decimal.NewFromInt(330000),
		Method:          "CASH",
	}))
	require.NoError(t, m.Handle(ctx, &room.RoomCleanedEvent{BaseDomainEvent: base(room.EventTypeRoomCleaned)}))

	got := collect(t, reader)

	checkIns, ok := got["frontdesk_check_ins_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, checkIns.DataPoints, 1)
	assert.Equal(t, int64(2), checkIns.DataPoints[0].Value)
	rentalType, _ := checkIns.DataPoints[0].Attributes.Value(attribute.Key("rental_type"))
	assert.Equal(t, "HOURLY", rentalType.AsString())

	revenue, ok := got["frontdesk_revenue_total"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, revenue.DataPoints, 1)
	assert.InDelta(t, 330000, revenue.DataPoints[0].Value, 0.001)

	cleaned, ok := got["frontdesk_rooms_cleaned_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), cleaned.DataPoints[0].Value)

	_, present := got["frontdesk_stays_cancelled_total"]
	assert.False(t, present, "no cancellations were recorded")
}

func TestFrontDeskMetrics_EventTypes(t *testing.T) {
	m, _ := newMetrics(t)
	assert.Contains(t, m.EventTypes(), room.EventTypeRoomCheckedOut)
	assert.NotContains(t, m.EventTypes(), room.EventTypeStayShortened)
}

func TestFrontDeskMetrics_Deliver(t *testing.T) {
	m, reader := newMetrics(t)
	ctx := context.Background()

	require.NoError(t, m.Deliver(ctx, []frontdesk.AlertResponse{
		{RoomNumber: "101", Urgency: room.UrgencyUrgent},
		{RoomNumber: "102", Urgency: room.UrgencyUrgent},
		{RoomNumber: "201", Urgency: room.UrgencyNormal},
	}))

	gauge, ok := collect(t, reader)["frontdesk_checkout_alerts"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)

	byUrgency := make(map[string]int64)
	for _, dp := range gauge.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("urgency"))
		byUrgency[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"URGENT": 2, "WARNING": 0, "NORMAL": 1}, byUrgency)
}

func TestSetup_Disabled(t *testing.T) {
	p, err := telemetry.Setup(context.Background(), telemetry.Config{ServiceName: "frontdesk"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NotNil(t, p.Meter("frontdesk"))
	assert.NotNil(t, p.Tracer("frontdesk"))
	assert.False(t, p.ZapCore(0).Enabled(0))
	assert.NoError(t, p.Shutdown(context.Background()))
}
