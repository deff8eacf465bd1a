package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frontdesk/backend/internal/bootstrap"
	"github.com/frontdesk/backend/internal/infrastructure/config"
	"github.com/frontdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog, logErr := logger.NewForEnvironment(os.Getenv("FRONTDESK_APP_ENV"))
		if logErr != nil {
			panic("Failed to load configuration: " + err.Error())
		}
		bootLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting front desk",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("database", cfg.Database.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to build application", zap.Error(err))
	}

	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		shutdown(app, log)
		os.Exit(1)
	}
	log.Info("Front desk running")

	<-ctx.Done()
	log.Info("Shutting down front desk...")
	shutdown(app, log)
	log.Info("Front desk exited gracefully")
}

func shutdown(app *bootstrap.App, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		log.Error("Shutdown finished with errors", zap.Error(err))
	}
}
