// Package bootstrap wires the front desk service to its stores, locks,
// event consumers and the checkout alert scheduler.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/frontdesk/backend/internal/application/frontdesk"
	"github.com/frontdesk/backend/internal/domain/billing"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/infrastructure/config"
	"github.com/frontdesk/backend/internal/infrastructure/event"
	"github.com/frontdesk/backend/internal/infrastructure/lock"
	"github.com/frontdesk/backend/internal/infrastructure/logger"
	"github.com/frontdesk/backend/internal/infrastructure/persistence"
	"github.com/frontdesk/backend/internal/infrastructure/persistence/memory"
	"github.com/frontdesk/backend/internal/infrastructure/scheduler"
	"github.com/frontdesk/backend/internal/infrastructure/telemetry"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App holds the running components
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	FrontDesk *frontdesk.FrontDeskService
	Catalog   billing.CatalogRepository
	Payments  billing.PaymentRepository
	Bus       *event.InMemoryEventBus
	Scheduler *scheduler.CheckoutAlertScheduler
	Metrics   *telemetry.FrontDeskMetrics

	telemetry *telemetry.Providers
	db        *persistence.Database
	redisLock *lock.RedisRoomLocker
	nats      *nats.Conn
}

type stores struct {
	rooms    room.RoomRepository
	payments billing.PaymentRepository
	charges  billing.ServiceChargeRepository
	catalog  billing.CatalogRepository
}

// New builds the application from cfg. base is the process logger; when
// telemetry is enabled its entries are also exported over OTLP.
func New(ctx context.Context, cfg *config.Config, base *zap.Logger) (app *App, err error) {
	if base == nil {
		base = zap.NewNop()
	}
	app = &App{Config: cfg, Logger: base}
	defer func() {
		if err != nil {
			_ = app.Shutdown(context.Background())
		}
	}()

	app.telemetry, err = telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.ExportInterval,
	}, base)
	if err != nil {
		return app, fmt.Errorf("telemetry: %w", err)
	}
	if app.telemetry.IsEnabled() {
		otelCore := app.telemetry.ZapCore(logger.ParseLevel(cfg.Log.Level))
		app.Logger = base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, otelCore)
		}))
	}
	log := app.Logger

	policy, err := cfg.RoomPolicy()
	if err != nil {
		return app, err
	}

	st, err := app.openStores(ctx)
	if err != nil {
		return app, err
	}
	app.Catalog = st.catalog
	app.Payments = st.payments

	locker, err := app.openLocker()
	if err != nil {
		return app, err
	}

	app.FrontDesk = frontdesk.NewFrontDeskService(frontdesk.ServiceDeps{
		Rooms:          st.rooms,
		Payments:       st.payments,
		Charges:        st.charges,
		Catalog:        st.catalog,
		Locker:         locker,
		Logger:         log,
		Policy:         policy,
		DefaultVATRate: cfg.Billing.DefaultVATRate,
	})

	app.Bus = event.NewInMemoryEventBus(log)
	app.FrontDesk.SetEventPublisher(app.Bus)

	app.Metrics, err = telemetry.NewFrontDeskMetrics(app.telemetry.Meter("frontdesk"), cfg.Policy.Currency, log)
	if err != nil {
		return app, err
	}
	app.Bus.Subscribe(app.Metrics)

	if cfg.Messaging.NATSEnabled {
		app.nats, err = event.ConnectNATS(cfg.Messaging.NATSURL, cfg.App.Name, log)
		if err != nil {
			return app, err
		}
		app.Bus.Subscribe(event.NewBrokerForwarder(app.nats, event.NewEventSerializer(), cfg.Messaging.SubjectPrefix, log))
	}

	schedCfg := scheduler.DefaultCheckoutAlertSchedulerConfig()
	schedCfg.Enabled = cfg.Scheduler.AlertEnabled
	schedCfg.Interval = cfg.Scheduler.AlertInterval
	app.Scheduler = scheduler.NewCheckoutAlertScheduler(app.FrontDesk, log, schedCfg,
		scheduler.NewLogSink(log),
		app.Metrics,
	)
	app.Scheduler.SetTracer(app.telemetry.Tracer("frontdesk/scheduler"))

	return app, nil
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	cfg := a.Config
	if cfg.Database.Driver == "memory" {
		a.Logger.Warn("using in-memory stores; state is lost on exit")
		return stores{
			rooms:    memory.NewRoomStore(),
			payments: memory.NewPaymentStore(),
			charges:  memory.NewChargeStore(),
			catalog:  memory.NewCatalog(),
		}, nil
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:       a.Logger.Named("gorm"),
		LogLevel:     cfg.Log.Level,
		TraceQueries: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		return stores{}, err
	}
	a.db = db

	if db.Driver() == "sqlite" {
		if err := db.AutoMigrate(ctx); err != nil {
			return stores{}, err
		}
	}
	a.Logger.Info("database connected", zap.String("driver", db.Driver()))

	return stores{
		rooms:    persistence.NewGormRoomRepository(db.DB),
		payments: persistence.NewGormPaymentRepository(db.DB),
		charges:  persistence.NewGormServiceChargeRepository(db.DB),
		catalog:  persistence.NewGormCatalogRepository(db.DB),
	}, nil
}

func (a *App) openLocker() (frontdesk.RoomLocker, error) {
	cfg := a.Config.Redis
	if !cfg.Enabled {
		return lock.NewKeyedLocker(), nil
	}
	l, err := lock.NewRedisRoomLocker(lock.RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.LockTTL,
	}, a.Logger)
	if err != nil {
		return nil, err
	}
	a.redisLock = l
	return l, nil
}

// Start starts the event bus and the alert scheduler
func (a *App) Start(ctx context.Context) error {
	if err := a.Bus.Start(ctx); err != nil {
		return err
	}
	return a.Scheduler.Start(ctx)
}

// Shutdown stops the scheduler, drains the broker connection and releases
// every store. It is safe to call on a partially built App.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Scheduler != nil {
		errs = append(errs, a.Scheduler.Stop(ctx))
	}
	if a.Bus != nil {
		errs = append(errs, a.Bus.Stop(ctx))
	}
	if a.nats != nil {
		errs = append(errs, a.nats.Drain())
	}
	if a.redisLock != nil {
		errs = append(errs, a.redisLock.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
