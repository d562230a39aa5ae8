package telemetry

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrKeyPaymentType   = attribute.Key("payment_type")
	AttrKeyChequeStatus  = attribute.Key("cheque_status")
	AttrKeyInvoiceStatus = attribute.Key("invoice_status")
)

// InvoiceMetrics records business counters from invoice domain events.
type InvoiceMetrics struct {
	invoicesCreated *Counter
	invoiceAmount   *FloatCounter
	payments        *Counter
	paymentAmount   *FloatCounter
	chequeChanges   *Counter
	returns         *Counter
	returnedUnits   *Counter
	refundAmount    *FloatCounter
}

// NewInvoiceMetrics creates the invoice instruments on meter
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	var (
		m   InvoiceMetrics
		err error
	)
	if m.invoicesCreated, err = NewCounter(meter, "invoice_created_total", "Invoices created", "{invoice}"); err != nil {
		return nil, err
	}
	if m.invoiceAmount, err = NewFloatCounter(meter, "invoice_amount_total", "Sum of invoice totals at creation", "{currency}"); err != nil {
		return nil, err
	}
	if m.payments, err = NewCounter(meter, "invoice_payments_total", "Payments appended to invoices", "{payment}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewFloatCounter(meter, "invoice_payment_amount_total", "Sum of appended payment amounts", "{currency}"); err != nil {
		return nil, err
	}
	if m.chequeChanges, err = NewCounter(meter, "cheque_status_changes_total", "Cheque status transitions", "{change}"); err != nil {
		return nil, err
	}
	if m.returns, err = NewCounter(meter, "invoice_returns_total", "Processed product returns", "{return}"); err != nil {
		return nil, err
	}
	if m.returnedUnits, err = NewCounter(meter, "invoice_returned_units_total", "Units taken back on returns", "{unit}"); err != nil {
		return nil, err
	}
	if m.refundAmount, err = NewFloatCounter(meter, "invoice_refund_amount_total", "Sum of refunds on returns", "{currency}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// EventTypes implements shared.EventHandler
func (m *InvoiceMetrics) EventTypes() []string {
	return []string{
		invoicing.EventTypeInvoiceCreated,
		invoicing.EventTypePaymentRecorded,
		invoicing.EventTypeChequeStatusChanged,
		invoicing.EventTypeReturnProcessed,
	}
}

// Handle implements shared.EventHandler
func (m *InvoiceMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *invoicing.InvoiceCreatedEvent:
		attrs := []attribute.KeyValue{AttrKeyPaymentType.String(e.PaymentType.String())}
		m.invoicesCreated.Inc(ctx, attrs...)
		m.invoiceAmount.Add(ctx, e.TotalAmount.InexactFloat64(), attrs...)
	case *invoicing.PaymentRecordedEvent:
		attrs := []attribute.KeyValue{AttrKeyPaymentType.String(e.PaymentType.String())}
		m.payments.Inc(ctx, attrs...)
		m.paymentAmount.Add(ctx, e.PaidAmount.InexactFloat64(), attrs...)
	case *invoicing.ChequeStatusChangedEvent:
		m.chequeChanges.Inc(ctx,
			AttrKeyChequeStatus.String(e.ToStatus.String()),
			AttrKeyInvoiceStatus.String(e.Status.String()),
		)
	case *invoicing.ReturnProcessedEvent:
		m.returns.Inc(ctx)
		m.returnedUnits.Add(ctx, int64(e.ReturnQty))
		m.refundAmount.Add(ctx, e.RefundAmount.InexactFloat64())
	}
	return nil
}

var _ shared.EventHandler = (*InvoiceMetrics)(nil)
