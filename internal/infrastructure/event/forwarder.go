package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// MessagePublisher is the broker side of the forwarder. *nats.Conn satisfies it.
type MessagePublisher interface {
	Publish(subject string, data []byte) error
}

// BrokerForwarder relays every domain event to a message broker under the
// subject "<prefix>.<EventType>", so other systems (housekeeping boards,
// accounting) can follow room activity.
type BrokerForwarder struct {
	publisher  MessagePublisher
	serializer *EventSerializer
	prefix     string
	logger     *zap.Logger
}

// NewBrokerForwarder creates a forwarder publishing through p
func NewBrokerForwarder(p MessagePublisher, serializer *EventSerializer, prefix string, logger *zap.Logger) *BrokerForwarder {
	if serializer == nil {
		serializer = NewEventSerializer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrokerForwarder{
		publisher:  p,
		serializer: serializer,
		prefix:     strings.TrimSuffix(prefix, "."),
		logger:     logger.Named("broker_forwarder"),
	}
}

// Subject returns the broker subject for an event type
func (f *BrokerForwarder) Subject(eventType string) string {
	if f.prefix == "" {
		return eventType
	}
	return f.prefix + "." + eventType
}

// Handle implements shared.EventHandler
func (f *BrokerForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	data, err := f.serializer.Encode(event)
	if err != nil {
		return err
	}
	subject := f.Subject(event.EventType())
	if err := f.publisher.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	f.logger.Debug("event forwarded",
		zap.String("subject", subject),
		zap.String("event_id", event.EventID().String()),
	)
	return nil
}

// EventTypes implements shared.EventHandler; the forwarder receives every event
func (f *BrokerForwarder) EventTypes() []string {
	return nil
}

// ConnectNATS opens a NATS connection that keeps reconnecting in the background
func ConnectNATS(url, name string, logger *zap.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return conn, nil
}

var _ shared.EventHandler = (*BrokerForwarder)(nil)
