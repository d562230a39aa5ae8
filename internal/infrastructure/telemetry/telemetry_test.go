package telemetry

import (
	"context"
	"runtime/pprof"
	"sync"
	"testing"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// memLogExporter keeps exported record bodies
type memLogExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *memLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *memLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memLogExporter) ForceFlush(context.Context) error { return nil }

func (e *memLogExporter) messages() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bodies...)
}

func TestLogExporter_DisabledLeavesLoggerAlone(t *testing.T) {
	exp, err := NewLogExporter(context.Background(), config.TelemetryConfig{Enabled: true}, nil)
	require.NoError(t, err)
	assert.False(t, exp.IsEnabled())

	base := zap.NewNop()
	assert.Same(t, base, exp.Bridge(base, zapcore.InfoLevel))
	assert.NoError(t, exp.Shutdown(context.Background()))
}

func TestLogExporter_BridgeShipsAtOrAboveMinLevel(t *testing.T) {
	mem := &memLogExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(mem)))
	exp := newLogExporter(provider, zap.NewNop())
	require.True(t, exp.IsEnabled())

	core, local := observer.New(zapcore.DebugLevel)
	log := exp.Bridge(zap.New(core), zapcore.WarnLevel)

	log.Debug("stock lookup")
	log.Info("invoice created")
	log.Warn("cheque overdue")
	log.With(zap.String("invoice_id", "482913570264815")).Error("payment rejected")

	assert.Equal(t, 4, local.Len())
	assert.Equal(t, []string{"cheque overdue", "payment rejected"}, mem.messages())
	assert.NoError(t, exp.Shutdown(context.Background()))
}

func TestNewProfiler(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		p, err := NewProfiler(config.ProfilingConfig{}, nil)
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("enabled needs a server", func(t *testing.T) {
		_, err := NewProfiler(config.ProfilingConfig{Enabled: true}, zap.NewNop())
		assert.ErrorContains(t, err, "server address")
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewProfiler(config.ProfilingConfig{
			Enabled:       true,
			ServerAddress: "http://localhost:4040",
			ProfileTypes:  []string{"cpu", "heapdump"},
		}, zap.NewNop())
		assert.ErrorContains(t, err, `unknown profile type "heapdump"`)
	})
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes([]string{"CPU", " mutex ", "goroutines"})
	require.NoError(t, err)
	assert.Len(t, types, 4)

	types, err = parseProfileTypes(nil)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestWithProfilingLabels(t *testing.T) {
	var route, op string
	var opSet bool
	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelRoute:     "/api/v1/invoice/returns",
		ProfilingLabelOperation: "",
	}, func(ctx context.Context) {
		route, _ = pprof.Label(ctx, ProfilingLabelRoute)
		op, opSet = pprof.Label(ctx, ProfilingLabelOperation)
	})
	assert.Equal(t, "/api/v1/invoice/returns", route)
	assert.Empty(t, op)
	assert.False(t, opSet)

	called := false
	WithProfilingLabels(context.Background(), nil, func(ctx context.Context) {
		called = true
		_, ok := pprof.Label(ctx, ProfilingLabelRoute)
		assert.False(t, ok)
	})
	assert.True(t, called)
}

func TestInvoiceMetrics_Handle(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewInvoiceMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	events := []shared.DomainEvent{
		&invoicing.InvoiceCreatedEvent{PaymentType: invoicing.PaymentTypeCash, TotalAmount: decimal.RequireFromString("1200.50")},
		&invoicing.InvoiceCreatedEvent{PaymentType: invoicing.PaymentTypeCheque, TotalAmount: decimal.RequireFromString("300")},
		&invoicing.PaymentRecordedEvent{PaymentType: invoicing.PaymentTypeCash, PaidAmount: decimal.RequireFromString("200")},
		&invoicing.ChequeStatusChangedEvent{ToStatus: invoicing.PaymentStatusCleared, Status: invoicing.InvoiceStatusPaid},
		&invoicing.ReturnProcessedEvent{ReturnQty: 3, RefundAmount: decimal.RequireFromString("45")},
	}
	for _, e := range events {
		require.NoError(t, m.Handle(ctx, e))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	got := map[string]float64{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			switch data := metric.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					got[metric.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					got[metric.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, 2.0, got["invoice_created_total"])
	assert.InDelta(t, 1500.50, got["invoice_amount_total"], 0.001)
	assert.Equal(t, 1.0, got["invoice_payments_total"])
	assert.Equal(t, 1.0, got["cheque_status_changes_total"])
	assert.Equal(t, 3.0, got["invoice_returned_units_total"])
	assert.InDelta(t, 45.0, got["invoice_refund_amount_total"], 0.001)
	assert.ElementsMatch(t, []string{
		invoicing.EventTypeInvoiceCreated,
		invoicing.EventTypePaymentRecorded,
		invoicing.EventTypeChequeStatusChanged,
		invoicing.EventTypeReturnProcessed,
	}, m.EventTypes())
}
