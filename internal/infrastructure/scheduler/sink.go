package scheduler

import (
	"context"
	"sync"

	"github.com/frontdesk/backend/internal/application/frontdesk"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertSinkFunc adapts a function to AlertSink
type AlertSinkFunc func(ctx context.Context, alerts []frontdesk.AlertResponse) error

// Deliver implements AlertSink
func (f AlertSinkFunc) Deliver(ctx context.Context, alerts []frontdesk.AlertResponse) error {
	return f(ctx, alerts)
}

// LogSink writes an entry when a stay first appears in the alert set or its
// urgency changes, so a stay due out in 90 minutes is logged three times
// (NORMAL, WARNING, URGENT) rather than once per scan.
type LogSink struct {
	logger *zap.Logger

	mu   sync.Mutex
	seen map[uuid.UUID]room.Urgency
}

// NewLogSink creates a log sink
func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{
		logger: log,
		seen:   make(map[uuid.UUID]room.Urgency),
	}
}

// Deliver implements AlertSink
func (s *LogSink) Deliver(ctx context.Context, alerts []frontdesk.AlertResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.Enrich(ctx, s.logger)
	current := make(map[uuid.UUID]room.Urgency, len(alerts))
	for _, a := range alerts {
		current[a.StayID] = a.Urgency
		if prev, ok := s.seen[a.StayID]; ok && prev == a.Urgency {
			continue
		}
		fields := []zap.Field{
			zap.String("room_number", a.RoomNumber),
			zap.String("guest", a.GuestName),
			zap.Time("check_out", a.CheckOutDate),
			zap.Int("minutes_left", a.MinutesUntilCheckout),
			zap.String("urgency", string(a.Urgency)),
		}
		if a.Urgency == room.UrgencyUrgent {
			log.Warn("Checkout due soon", fields...)
		} else {
			log.Info("Upcoming checkout", fields...)
		}
	}
	s.seen = current
	return nil
}
