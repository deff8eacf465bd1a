package telemetry

import (
	"context"
	"fmt"

	"github.com/frontdesk/backend/internal/application/frontdesk"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// FrontDeskMetrics turns room events into counters and the checkout alert
// scan into per-urgency gauges. It is subscribed to the event bus and
// registered as a sink of the checkout alert scheduler.
type FrontDeskMetrics struct {
	logger   *zap.Logger
	currency string

	checkIns      *Counter
	checkOuts     *Counter
	cancellations *Counter
	cleanings     *Counter
	maintenance   *Counter
	revenue       metric.Float64Counter
	alerts        *Gauge
}

// NewFrontDeskMetrics creates the front desk instruments on meter
func NewFrontDeskMetrics(meter metric.Meter, currency string, logger *zap.Logger) (*FrontDeskMetrics, error) {
	if meter == nil {
		return nil, fmt.Errorf("NewFrontDeskMetrics: %w", ErrMeterNil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &FrontDeskMetrics{logger: logger, currency: currency}

	var err error
	if m.checkIns, err = NewCounter(meter, "frontdesk_check_ins_total", "Guests checked in", "{stays}"); err != nil {
		return nil, err
	}
	if m.checkOuts, err = NewCounter(meter, "frontdesk_check_outs_total", "Stays settled and checked out", "{stays}"); err != nil {
		return nil, err
	}
	if m.cancellations, err = NewCounter(meter, "frontdesk_stays_cancelled_total", "Stays cancelled without payment", "{stays}"); err != nil {
		return nil, err
	}
	if m.cleanings, err = NewCounter(meter, "frontdesk_rooms_cleaned_total", "Rooms marked clean by housekeeping", "{rooms}"); err != nil {
		return nil, err
	}
	if m.maintenance, err = NewCounter(meter, "frontdesk_maintenance_toggles_total", "Rooms entering or leaving maintenance", "{rooms}"); err != nil {
		return nil, err
	}
	if m.revenue, err = meter.Float64Counter("frontdesk_revenue_total",
		metric.WithDescription("Settled payment totals including VAT"),
		metric.WithUnit("{"+currency+"}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create counter frontdesk_revenue_total: %w", err)
	}
	if m.alerts, err = NewGauge(meter, "frontdesk_checkout_alerts", "Occupied rooms inside the checkout alert horizon", "{rooms}"); err != nil {
		return nil, err
	}
	return m, nil
}

// Handle implements shared.EventHandler
func (m *FrontDeskMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *room.RoomCheckedInEvent:
		m.checkIns.Inc(ctx, AttrRentalType.String(e.RentalType.String()))
	case *room.RoomCheckedOutEvent:
		m.checkOuts.Inc(ctx,
			AttrRentalType.String(e.RentalType.String()),
			AttrPaymentMethod.String(e.Method),
		)
		m.revenue.Add(ctx, e.Total.InexactFloat64(), metric.WithAttributes(
			AttrPaymentMethod.String(e.Method),
			AttrCurrency.String(m.currency),
		))
	case *room.StayCancelledEvent:
		m.cancellations.Inc(ctx)
	case *room.RoomCleanedEvent:
		m.cleanings.Inc(ctx)
	case *room.RoomMaintenanceToggledEvent:
		m.maintenance.Inc(ctx, AttrOutOfOrder.Bool(e.OutOfOrder))
	default:
		m.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (m *FrontDeskMetrics) EventTypes() []string {
	return []string{
		room.EventTypeRoomCheckedIn,
		room.EventTypeRoomCheckedOut,
		room.EventTypeStayCancelled,
		room.EventTypeRoomCleaned,
		room.EventTypeRoomMaintenanceToggled,
	}
}

// Deliver records the number of alerts per urgency. Buckets with no alerts
// are recorded as zero so the gauge drops once rooms are checked out.
func (m *FrontDeskMetrics) Deliver(ctx context.Context, alerts []frontdesk.AlertResponse) error {
	counts := map[room.Urgency]int64{
		room.UrgencyUrgent:  0,
		room.UrgencyWarning: 0,
		room.UrgencyNormal:  0,
	}
	for _, a := range alerts {
		counts[a.Urgency]++
	}
	for urgency, n := range counts {
		m.alerts.Record(ctx, n, AttrUrgency.String(string(urgency)))
	}
	return nil
}

var _ shared.EventHandler = (*FrontDeskMetrics)(nil)
