package invoicing

import (
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated      = "InvoiceCreated"
	EventTypePaymentRecorded     = "PaymentRecorded"
	EventTypeChequeStatusChanged = "ChequeStatusChanged"
	EventTypeReturnProcessed     = "ReturnProcessed"
)

// InvoiceCreatedEvent is raised when an invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID   string          `json:"invoice_id"`
	CustomerID  uint            `json:"customer_id"`
	PaymentType PaymentType     `json:"payment_type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      InvoiceStatus   `json:"status"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	var paymentType PaymentType
	if len(inv.Payments) > 0 {
		paymentType = inv.Payments[0].PaymentType
	}
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID, inv.UpdatedAt),
		InvoiceID:       inv.ID,
		CustomerID:      inv.CustomerID,
		PaymentType:     paymentType,
		TotalAmount:     inv.TotalAmount,
		Status:          inv.Status,
	}
}

// PaymentRecordedEvent is raised when a payment is appended
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID   string          `json:"invoice_id"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	PaymentType PaymentType     `json:"payment_type"`
	Status      InvoiceStatus   `json:"status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(inv *Invoice, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeInvoice, inv.ID, inv.UpdatedAt),
		InvoiceID:       inv.ID,
		PaidAmount:      p.PaidAmount,
		PaymentType:     p.PaymentType,
		Status:          inv.Status,
	}
}

// ChequeStatusChangedEvent is raised when a cheque is cleared, rejected or expired
type ChequeStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID  string        `json:"invoice_id"`
	PaymentID  uint          `json:"payment_id"`
	FromStatus PaymentStatus `json:"from_status"`
	ToStatus   PaymentStatus `json:"to_status"`
	Status     InvoiceStatus `json:"status"`
}

// NewChequeStatusChangedEvent creates a new ChequeStatusChangedEvent
func NewChequeStatusChangedEvent(inv *Invoice, p *Payment, from PaymentStatus) *ChequeStatusChangedEvent {
	return &ChequeStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChequeStatusChanged, AggregateTypeInvoice, inv.ID, p.UpdatedAt),
		InvoiceID:       inv.ID,
		PaymentID:       p.ID,
		FromStatus:      from,
		ToStatus:        p.Status,
		Status:          inv.Status,
	}
}

// ReturnProcessedEvent is raised when units are taken back
type ReturnProcessedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    string          `json:"invoice_id"`
	ProductID    uint            `json:"product_id"`
	ReturnQty    int             `json:"return_qty"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Status       InvoiceStatus   `json:"status"`
}

// NewReturnProcessedEvent creates a new ReturnProcessedEvent
func NewReturnProcessedEvent(inv *Invoice, ret *ProductReturn) *ReturnProcessedEvent {
	return &ReturnProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnProcessed, AggregateTypeInvoice, inv.ID, ret.CreatedAt),
		InvoiceID:       inv.ID,
		ProductID:       ret.ProductID,
		ReturnQty:       ret.ReturnQty,
		RefundAmount:    ret.RefundAmount,
		Status:          inv.Status,
	}
}
