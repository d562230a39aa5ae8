package telemetry

import (
	"context"
	"fmt"

	"github.com/erp/invoicing/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogExporter ships zap entries to the OTLP collector next to the regular
// stdout or file output.
type LogExporter struct {
	provider *sdklog.LoggerProvider
	logger   *zap.Logger
}

// NewLogExporter starts the OTLP log pipeline when both telemetry and
// telemetry.logs_enabled are set. Otherwise Bridge returns loggers unchanged.
func NewLogExporter(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*LogExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled || !cfg.LogsEnabled {
		return &LogExporter{logger: logger}, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(provider)

	logger.Info("OTLP log export enabled", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return newLogExporter(provider, logger), nil
}

func newLogExporter(provider *sdklog.LoggerProvider, logger *zap.Logger) *LogExporter {
	return &LogExporter{provider: provider, logger: logger}
}

// IsEnabled reports whether entries leave the process
func (e *LogExporter) IsEnabled() bool {
	return e.provider != nil
}

// Bridge returns a logger writing to base and, at min or above, to the collector
func (e *LogExporter) Bridge(base *zap.Logger, min zapcore.Level) *zap.Logger {
	if e.provider == nil {
		return base
	}
	otelCore := &minLevelCore{
		Core: otelzap.NewCore(TracerName, otelzap.WithLoggerProvider(e.provider)),
		min:  min,
	}
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, otelCore)
	}))
}

// Shutdown flushes buffered records
func (e *LogExporter) Shutdown(ctx context.Context) error {
	if e.provider == nil {
		return nil
	}
	if err := e.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown log exporter: %w", err)
	}
	return nil
}

// minLevelCore drops entries below min; the otelzap core accepts every level
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}
