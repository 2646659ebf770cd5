package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"github.com/wzledger/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables; never in production
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingConfigFrom maps the application telemetry settings onto a DBTracingConfig.
func DBTracingConfigFrom(cfg config.TelemetryConfig) DBTracingConfig {
	return DBTracingConfig{
		Enabled:         cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: cfg.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin registers otelgorm and annotates its spans with
// rows affected, table, errors and a slow-query flag.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs the plugin on db. It is a no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}

	if err := registerAround(db, "otel_timing", markStart(traceStartKey), p.annotate); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh))
	return nil
}

func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(traceStartKey).(time.Time); ok {
		elapsed := time.Since(start)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

type startTimeKey string

const (
	traceStartKey   startTimeKey = "otel_query_start_time"
	metricsStartKey startTimeKey = "db_metrics_start_time"
)

func markStart(key startTimeKey) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db.Statement.Context = context.WithValue(ctx, key, time.Now())
	}
}

// registerAround installs before/after callbacks around every GORM operation.
// Callback names are "<prefix>:before_<op>" and "<prefix>:after_<op>".
func registerAround(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	steps := []struct {
		name string
		reg  func() error
	}{
		{"create", func() error { return cb.Create().Before("gorm:create").Register(prefix+":before_create", before) }},
		{"query", func() error { return cb.Query().Before("gorm:query").Register(prefix+":before_query", before) }},
		{"update", func() error { return cb.Update().Before("gorm:update").Register(prefix+":before_update", before) }},
		{"delete", func() error { return cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before) }},
		{"row", func() error { return cb.Row().Before("gorm:row").Register(prefix+":before_row", before) }},
		{"raw", func() error { return cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before) }},
		{"create", func() error { return cb.Create().After("gorm:create").Register(prefix+":after_create", after) }},
		{"query", func() error { return cb.Query().After("gorm:query").Register(prefix+":after_query", after) }},
		{"update", func() error { return cb.Update().After("gorm:update").Register(prefix+":after_update", after) }},
		{"delete", func() error { return cb.Delete().After("gorm:delete").Register(prefix+":after_delete", after) }},
		{"row", func() error { return cb.Row().After("gorm:row").Register(prefix+":after_row", after) }},
		{"raw", func() error { return cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after) }},
	}

	for _, step := range steps {
		if err := step.reg(); err != nil {
			return fmt.Errorf("register %s callback for %s: %w", prefix, step.name, err)
		}
	}
	return nil
}
