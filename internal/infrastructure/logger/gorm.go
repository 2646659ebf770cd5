package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormConfig controls which statements reach the log
type GormConfig struct {
	Level gormlogger.LogLevel
	// SlowThreshold marks statements at or above it as slow. Zero uses 200ms.
	SlowThreshold time.Duration
	// LogNotFound also logs gorm.ErrRecordNotFound, which repositories
	// translate into 404s and is usually noise.
	LogNotFound bool
}

// GormLogger writes GORM output through zap. Every line carries the
// request, user and trace IDs of the statement's context.
type GormLogger struct {
	base *zap.Logger
	cfg  GormConfig
}

// NewGormLogger creates a GORM logger backed by zap
func NewGormLogger(base *zap.Logger, cfg GormConfig) *GormLogger {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = defaultSlowQuery
	}
	return &GormLogger{base: base.Named("gorm"), cfg: cfg}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cfg := l.cfg
	cfg.Level = level
	return &GormLogger{base: l.base, cfg: cfg}
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, at gormlogger.LogLevel, level zapcore.Level, msg string, data []any) {
	if l.cfg.Level < at {
		return
	}
	L(ctx, l.base).Sugar().Logf(level, msg, data...)
}

// Trace implements gormlogger.Interface. Failed statements log at error,
// slow ones at warn and the rest at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	level, msg, ok := l.classify(elapsed, err)
	if !ok {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if level == zapcore.WarnLevel {
		fields = append(fields, zap.Duration("slow_threshold", l.cfg.SlowThreshold))
	}
	L(ctx, l.base).Log(level, msg, fields...)
}

func (l *GormLogger) classify(elapsed time.Duration, err error) (zapcore.Level, string, bool) {
	switch {
	case l.cfg.Level <= gormlogger.Silent:
		return 0, "", false
	case err != nil:
		if errors.Is(err, gormlogger.ErrRecordNotFound) && !l.cfg.LogNotFound {
			return 0, "", false
		}
		return zapcore.ErrorLevel, "SQL Error", l.cfg.Level >= gormlogger.Error
	case elapsed >= l.cfg.SlowThreshold:
		return zapcore.WarnLevel, "Slow SQL", l.cfg.Level >= gormlogger.Warn
	default:
		return zapcore.DebugLevel, "SQL Query", l.cfg.Level >= gormlogger.Info
	}
}

// MapGormLogLevel maps the application log level onto GORM's levels
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
