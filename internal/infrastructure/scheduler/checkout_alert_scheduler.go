package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frontdesk/backend/internal/application/frontdesk"
	"github.com/frontdesk/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// AlertScanner derives the current checkout alerts.
// *frontdesk.FrontDeskService satisfies it.
type AlertScanner interface {
	ScanCheckoutAlerts(ctx context.Context) ([]frontdesk.AlertResponse, error)
}

// AlertSink receives the complete alert set after every scan
type AlertSink interface {
	Deliver(ctx context.Context, alerts []frontdesk.AlertResponse) error
}

// CheckoutAlertSchedulerConfig holds configuration for the checkout alert scheduler
type CheckoutAlertSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is the time between scans
	Interval time.Duration

	// ScanTimeout bounds a single scan including delivery to sinks
	ScanTimeout time.Duration
}

// DefaultCheckoutAlertSchedulerConfig returns default configuration
func DefaultCheckoutAlertSchedulerConfig() CheckoutAlertSchedulerConfig {
	return CheckoutAlertSchedulerConfig{
		Enabled:     true,
		Interval:    time.Minute,
		ScanTimeout: 30 * time.Second,
	}
}

// Validate checks the configuration
func (c CheckoutAlertSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.ScanTimeout <= 0 {
		return fmt.Errorf("%w: scan timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// CheckoutAlertScheduler rescans occupied rooms on a fixed interval and hands
// the alert set to its sinks. Each scan starts from scratch; alerts for rooms
// that were checked out since the previous scan simply disappear.
type CheckoutAlertScheduler struct {
	scanner AlertScanner
	sinks   []AlertSink
	logger  *zap.Logger
	tracer  trace.Tracer
	config  CheckoutAlertSchedulerConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	scanning  atomic.Bool

	last atomic.Pointer[[]frontdesk.AlertResponse]
}

// NewCheckoutAlertScheduler creates a new checkout alert scheduler
func NewCheckoutAlertScheduler(
	scanner AlertScanner,
	log *zap.Logger,
	config CheckoutAlertSchedulerConfig,
	sinks ...AlertSink,
) *CheckoutAlertScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutAlertScheduler{
		scanner: scanner,
		sinks:   sinks,
		logger:  log.Named("checkout_alerts"),
		tracer:  noop.NewTracerProvider().Tracer("scheduler"),
		config:  config,
	}
}

// SetTracer makes every scan a span; the scanner's queries become its children
func (s *CheckoutAlertScheduler) SetTracer(tracer trace.Tracer) {
	if tracer != nil {
		s.tracer = tracer
	}
}

// Start runs an immediate scan and then one per interval until Stop
func (s *CheckoutAlertScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Checkout alert scheduler is disabled")
		return nil
	}
	if err := s.config.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Checkout alert scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("sinks", len(s.sinks)),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight scan to finish
func (s *CheckoutAlertScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Checkout alert scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the background loop is active
func (s *CheckoutAlertScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastAlerts returns the alert set produced by the most recent successful scan
func (s *CheckoutAlertScheduler) LastAlerts() []frontdesk.AlertResponse {
	if p := s.last.Load(); p != nil {
		return *p
	}
	return nil
}

// RunOnce performs a single scan and delivers the result to every sink.
// Sink failures are logged; the first one is returned after all sinks ran.
func (s *CheckoutAlertScheduler) RunOnce(ctx context.Context) ([]frontdesk.AlertResponse, error) {
	if !s.scanning.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.scanning.Store(false)

	timeout := s.config.ScanTimeout
	if timeout <= 0 {
		timeout = DefaultCheckoutAlertSchedulerConfig().ScanTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "checkout_alert_scan")
	defer span.End()
	// scan-scoped correlation fields for sink and query logs
	ctx = logger.WithRequestID(ctx, uuid.NewString())
	ctx = logger.WithOperator(ctx, "checkout-alert-scheduler")
	ctx = logger.WithContext(ctx, s.logger)

	alerts, err := s.scanner.ScanCheckoutAlerts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan failed")
		return nil, fmt.Errorf("scan checkout alerts: %w", err)
	}
	s.last.Store(&alerts)
	span.SetAttributes(attribute.Int("frontdesk.alerts", len(alerts)))

	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, alerts); err != nil {
			logger.L(ctx).Error("Failed to deliver checkout alerts", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return alerts, firstErr
}

func (s *CheckoutAlertScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.tick(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *CheckoutAlertScheduler) tick(ctx context.Context) {
	start := time.Now()
	alerts, err := s.RunOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Checkout alert scan failed", zap.Error(err))
		}
		return
	}
	s.logger.Debug("Checkout alert scan completed",
		zap.Int("alerts", len(alerts)),
		zap.Duration("duration", time.Since(start)),
	)
}
