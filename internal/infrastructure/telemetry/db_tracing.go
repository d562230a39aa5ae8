package telemetry

import (
	"context"
	"time"

	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThresh = 200 * time.Millisecond

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// DBTracingPlugin registers otelgorm and flags slow statements on the active span.
type DBTracingPlugin struct {
	enabled   bool
	slowQuery time.Duration
	dbName    string
	provider  trace.TracerProvider
	logger    *zap.Logger
	now       func() time.Time
}

// DBTracingOption customizes a DBTracingPlugin
type DBTracingOption func(*DBTracingPlugin)

// WithDBTracerProvider overrides the global tracer provider
func WithDBTracerProvider(tp trace.TracerProvider) DBTracingOption {
	return func(p *DBTracingPlugin) {
		p.provider = tp
	}
}

// WithDBName sets the db.name span attribute
func WithDBName(name string) DBTracingOption {
	return func(p *DBTracingPlugin) {
		p.dbName = name
	}
}

// NewDBTracingPlugin builds the plugin from telemetry settings. Database tracing
// runs only when both telemetry and DB tracing are enabled.
func NewDBTracingPlugin(cfg config.TelemetryConfig, logger *zap.Logger, opts ...DBTracingOption) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &DBTracingPlugin{
		enabled:   cfg.Enabled && cfg.DBTraceEnabled,
		slowQuery: cfg.DBSlowQueryThresh,
		dbName:    "invoicing",
		logger:    logger,
		now:       time.Now,
	}
	if p.slowQuery <= 0 {
		p.slowQuery = defaultSlowQueryThresh
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register installs otelgorm and the timing callbacks on db. Query variables
// never reach span attributes.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.dbName),
		otelgorm.WithoutQueryVariables(),
	}
	if p.provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.provider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", p.slowQuery),
		zap.String("db_name", p.dbName),
	)
	return nil
}

// registerCallbacks times every gorm processor. The after hooks run before
// otelgorm closes its span so attributes land on the statement span.
func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	regs := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("otel_timing:before_create", p.markStart) },
		func() error { return cb.Query().Before("gorm:query").Register("otel_timing:before_query", p.markStart) },
		func() error { return cb.Update().Before("gorm:update").Register("otel_timing:before_update", p.markStart) },
		func() error { return cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", p.markStart) },
		func() error { return cb.Row().Before("gorm:row").Register("otel_timing:before_row", p.markStart) },
		func() error { return cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", p.markStart) },
		func() error {
			return cb.Create().After("gorm:create").Before("otel:after_create").Register("otel_slow_query:create", p.checkSlowQuery)
		},
		func() error {
			return cb.Query().After("gorm:query").Before("otel:after_query").Register("otel_slow_query:query", p.checkSlowQuery)
		},
		func() error {
			return cb.Update().After("gorm:update").Before("otel:after_update").Register("otel_slow_query:update", p.checkSlowQuery)
		},
		func() error {
			return cb.Delete().After("gorm:delete").Before("otel:after_delete").Register("otel_slow_query:delete", p.checkSlowQuery)
		},
		func() error {
			return cb.Row().After("gorm:row").Before("otel:after_row").Register("otel_slow_query:row", p.checkSlowQuery)
		},
		func() error {
			return cb.Raw().After("gorm:raw").Before("otel:after_raw").Register("otel_slow_query:raw", p.checkSlowQuery)
		},
	}
	for _, register := range regs {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (p *DBTracingPlugin) markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, p.now())
	}
}

func (p *DBTracingPlugin) checkSlowQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	elapsed := p.now().Sub(start)
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if elapsed < p.slowQuery {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
	)
	p.logger.Warn("Slow query detected",
		zap.String("table", db.Statement.Table),
		zap.Duration("duration", elapsed),
		zap.Duration("threshold", p.slowQuery),
		zap.String("trace_id", GetTraceID(ctx)),
	)
}
