package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/frontdesk/backend/internal/infrastructure/config"
	"github.com/frontdesk/backend/internal/infrastructure/logger"
	"github.com/frontdesk/backend/internal/infrastructure/persistence/models"
	"github.com/frontdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database wraps the GORM connection shared by the repositories
type Database struct {
	DB     *gorm.DB
	driver string
}

// Options tunes how the connection is opened
type Options struct {
	Logger       *zap.Logger
	LogLevel     string
	SlowQuery    time.Duration
	TraceQueries bool
}

// NewDatabase opens a postgres or sqlite connection for the given config
func NewDatabase(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	zapLogger := opts.Logger
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	slow := opts.SlowQuery
	if slow <= 0 {
		slow = logger.DefaultSlowQuery
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, opts.LogLevel, slow),
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver == "postgres",
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.TraceQueries {
		if err := telemetry.InstrumentGorm(db, cfg.Driver); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, driver: cfg.Driver}, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "frontdesk.db"
		}
		return sqlite.Open(path + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Driver returns the configured driver name
func (d *Database) Driver() string {
	return d.driver
}

// AutoMigrate creates the front desk tables from the GORM models.
// Postgres deployments use the SQL migrations instead.
func (d *Database) AutoMigrate(ctx context.Context) error {
	if err := d.DB.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
