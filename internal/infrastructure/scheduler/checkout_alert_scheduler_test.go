package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/frontdesk/backend/internal/application/frontdesk"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockAlertScanner struct {
	mock.Mock
}

func (m *MockAlertScanner) ScanCheckoutAlerts(ctx context.Context) ([]frontdesk.AlertResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]frontdesk.AlertResponse), args.Error(1)
}

type recordingSink struct {
	mu    sync.Mutex
	calls [][]frontdesk.AlertResponse
	err   error
}

func (s *recordingSink) Deliver(ctx context.Context, alerts []frontdesk.AlertResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, alerts)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func alert(number string, stayID uuid.UUID, minutes int, urgency room.Urgency) frontdesk.AlertResponse {
	return frontdesk.AlertResponse{
		RoomID:               uuid.New(),
		RoomNumber:           number,
		StayID:               stayID,
		GuestName:            "Guest " + number,
		CheckOutDate:         time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
		MinutesUntilCheckout: minutes,
		Urgency:              urgency,
	}
}

// ==== Config ====

func TestCheckoutAlertSchedulerConfig_Validate(t *testing.T) {
	cfg := DefaultCheckoutAlertSchedulerConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Minute, cfg.Interval)
	require.NoError(t, cfg.Validate())

	cfg.Interval = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultCheckoutAlertSchedulerConfig()
	cfg.ScanTimeout = -time.Second
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

// ==== RunOnce ====

func TestCheckoutAlertScheduler_RunOnce(t *testing.T) {
	scanner := new(MockAlertScanner)
	alerts := []frontdesk.AlertResponse{alert("101", uuid.New(), 25, room.UrgencyUrgent)}
	scanner.On("ScanCheckoutAlerts", mock.Anything).Return(alerts, nil).Once()

	first := &recordingSink{}
	second := &recordingSink{}
	s := NewCheckoutAlertScheduler(scanner, zap.NewNop(), DefaultCheckoutAlertSchedulerConfig(), first, second)

	got, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, alerts, got)
	assert.Equal(t, alerts, s.LastAlerts())
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
	scanner.AssertExpectations(t)
}

func TestCheckoutAlertScheduler_RunOnce_ScanError(t *testing.T) {
	scanner := new(MockAlertScanner)
	scanner.On("ScanCheckoutAlerts", mock.Anything).Return(nil, errors.New("db down"))
	sink := &recordingSink{}
	s := NewCheckoutAlertScheduler(scanner, nil, DefaultCheckoutAlertSchedulerConfig(), sink)

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, 0, sink.count())
	assert.Nil(t, s.LastAlerts())
}

func TestCheckoutAlertScheduler_RunOnce_SinkErrorDoesNotStopOthers(t *testing.T) {
	scanner := new(MockAlertScanner)
	scanner.On("ScanCheckoutAlerts", mock.Anything).Return([]frontdesk.AlertResponse{}, nil)
	failing := &recordingSink{err: errors.New("sink down")}
	healthy := &recordingSink{}
	s := NewCheckoutAlertScheduler(scanner, zap.NewNop(), DefaultCheckoutAlertSchedulerConfig(), failing, healthy)

	_, err := s.RunOnce(context.Background())
	assert.EqualError(t, err, "sink down")
	assert.Equal(t, 1, healthy.count())
}

func TestCheckoutAlertScheduler_RunOnce_RejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	slow := AlertSinkFunc(func(ctx context.Context, alerts []frontdesk.AlertResponse) error {
		close(entered)
		<-release
		return nil
	})
	scanner := new(MockAlertScanner)
	scanner.On("ScanCheckoutAlerts", mock.Anything).Return([]frontdesk.AlertResponse{}, nil)
	s := NewCheckoutAlertScheduler(scanner, zap.NewNop(), DefaultCheckoutAlertSchedulerConfig(), slow)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunOnce(context.Background())
		done <- err
	}()
	<-entered

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)

	close(release)
	assert.NoError(t, <-done)
}

// ==== Lifecycle ====

func TestCheckoutAlertScheduler_StartStop(t *testing.T) {
	scanner := new(MockAlertScanner)
	scanner.On("ScanCheckoutAlerts", mock.Anything).Return([]frontdesk.AlertResponse{}, nil)
	sink := &recordingSink{}
	cfg := DefaultCheckoutAlertSchedulerConfig()
	cfg.Interval = 10 * time.Millisecond
	s := NewCheckoutAlertScheduler(scanner, zap.NewNop(), cfg, sink)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return sink.count() >= 2 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(ctx))
}

func TestCheckoutAlertScheduler_Disabled(t *testing.T) {
	scanner := new(MockAlertScanner)
	cfg := DefaultCheckoutAlertSchedulerConfig()
	cfg.Enabled = false
	s := NewCheckoutAlertScheduler(scanner, zap.NewNop(), cfg)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	scanner.AssertNotCalled(t, "ScanCheckoutAlerts", mock.Anything)
}

func TestCheckoutAlertScheduler_StartRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultCheckoutAlertSchedulerConfig()
	cfg.Interval = 0
	s := NewCheckoutAlertScheduler(new(MockAlertScanner), zap.NewNop(), cfg)

	assert.ErrorIs(t, s.Start(context.Background()), ErrInvalidConfig)
	assert.False(t, s.IsRunning())
}

// ==== LogSink ====

func TestLogSink_LogsNewAndEscalatedAlertsOnly(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	sink := NewLogSink(zap.New(core))
	ctx := context.Background()
	stay := uuid.New()

	require.NoError(t, sink.Deliver(ctx, []frontdesk.AlertResponse{alert("101", stay, 90, room.UrgencyNormal)}))
	require.NoError(t, sink.Deliver(ctx, []frontdesk.AlertResponse{alert("101", stay, 89, room.UrgencyNormal)}))
	assert.Equal(t, 1, recorded.Len())

	require.NoError(t, sink.Deliver(ctx, []frontdesk.AlertResponse{alert("101", stay, 29, room.UrgencyUrgent)}))
	require.Equal(t, 2, recorded.Len())
	assert.Equal(t, zapcore.WarnLevel, recorded.All()[1].Level)

	// The stay left the set (checked out); a later reappearance is logged again
	require.NoError(t, sink.Deliver(ctx, nil))
	require.NoError(t, sink.Deliver(ctx, []frontdesk.AlertResponse{alert("101", stay, 20, room.UrgencyUrgent)}))
	assert.Equal(t, 3, recorded.Len())
}

func TestCheckoutAlertScheduler_RunOnce_TagsScanLogs(t *testing.T) {
	scanner := new(MockAlertScanner)
	scanner.On("ScanCheckoutAlerts", mock.Anything).
		Return([]frontdesk.AlertResponse{alert("305", uuid.New(), 45, room.UrgencyWarning)}, nil).Once()

	core, recorded := observer.New(zapcore.InfoLevel)
	s := NewCheckoutAlertScheduler(scanner, zap.NewNop(), DefaultCheckoutAlertSchedulerConfig(), NewLogSink(zap.New(core)))

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, recorded.Len())

	fields := recorded.All()[0].ContextMap()
	assert.NotEmpty(t, fields["request_id"])
	assert.Equal(t, "checkout-alert-scheduler", fields["operator"])
}

func TestCheckoutAlertScheduler_RunOnce_RecordsSpan(t *testing.T) {
	scanner := new(MockAlertScanner)
	scanner.On("ScanCheckoutAlerts", mock.Anything).
		Return([]frontdesk.AlertResponse{alert("410", uuid.New(), 10, room.UrgencyUrgent)}, nil).Once()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	core, recorded := observer.New(zapcore.InfoLevel)
	s := NewCheckoutAlertScheduler(scanner, zap.NewNop(), DefaultCheckoutAlertSchedulerConfig(), NewLogSink(zap.New(core)))
	s.SetTracer(tp.Tracer("test"))

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "checkout_alert_scan", spans[0].Name())

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, spans[0].SpanContext().TraceID().String(), recorded.All()[0].ContextMap()["trace_id"])
}
