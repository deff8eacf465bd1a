package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the threshold above which a statement is logged as slow
const DefaultSlowQuery = 200 * time.Millisecond

// GormLogger routes GORM query logs into zap, tagging each statement with
// the correlation fields of the calling context. Record-not-found errors are
// never logged: repositories translate them into domain not-found errors.
type GormLogger struct {
	logger    *zap.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
}

// NewGormLogger creates a GORM logger at the given level ("silent", "error",
// "warn", "info" or "debug"). A zero slowQuery disables slow-query warnings.
func NewGormLogger(zapLogger *zap.Logger, level string, slowQuery time.Duration) *GormLogger {
	return &GormLogger{
		logger:    zapLogger.Named("gorm"),
		level:     GormLevel(level),
		slowQuery: slowQuery,
	}
}

// GormLevel maps a log level name to the GORM level
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		Enrich(ctx, l.logger).Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		Enrich(ctx, l.logger).Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		Enrich(ctx, l.logger).Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	log := func(emit func(string, ...zap.Field), msg string, extra ...zap.Field) {
		sql, rows := fc()
		fields := append([]zap.Field{
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		}, Fields(ctx)...)
		emit(msg, append(fields, extra...)...)
	}

	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		log(l.logger.Error, "sql error", zap.Error(err))
	case l.slowQuery > 0 && elapsed > l.slowQuery && l.level >= gormlogger.Warn:
		log(l.logger.Warn, "slow sql", zap.Duration("threshold", l.slowQuery))
	case err == nil && l.level >= gormlogger.Info:
		log(l.logger.Debug, "sql")
	}
}
