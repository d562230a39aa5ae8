package invoicing

import (
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is always derived from payments and items, never set directly
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
)

// AllInvoiceStatuses lists statuses in reporting order
var AllInvoiceStatuses = []InvoiceStatus{InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusPaid}

// String returns the string representation
func (s InvoiceStatus) String() string {
	return string(s)
}

// ComputeStatus is the single rule mapping settled funds against the effective
// total. Both sides are compared at cent precision.
func ComputeStatus(paid, effectiveTotal decimal.Decimal) InvoiceStatus {
	paid = shared.Round2(paid)
	total := shared.Round2(effectiveTotal)
	switch {
	case !paid.IsPositive():
		return InvoiceStatusPending
	case paid.GreaterThanOrEqual(total):
		return InvoiceStatusPaid
	default:
		return InvoiceStatusPartiallyPaid
	}
}

// PaymentType is the method a payment row was made with
type PaymentType string

const (
	PaymentTypeCash          PaymentType = "CASH"
	PaymentTypeCheque        PaymentType = "CHEQUE"
	PaymentTypePurchaseOrder PaymentType = "PURCHASE_ORDER"
)

// IsValid checks if the payment type is known
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeCash, PaymentTypeCheque, PaymentTypePurchaseOrder:
		return true
	}
	return false
}

// String returns the string representation
func (t PaymentType) String() string {
	return string(t)
}

// PaymentStatus is shared by payment rows and cheque details
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusCleared  PaymentStatus = "CLEARED"
	PaymentStatusRejected PaymentStatus = "REJECTED"
	PaymentStatusExpired  PaymentStatus = "EXPIRED"
	PaymentStatusReturn   PaymentStatus = "RETURN"
)

// IsChequeStatus reports whether s may be requested for a cheque
func (s PaymentStatus) IsChequeStatus() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCleared, PaymentStatusRejected, PaymentStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further cheque transition is allowed
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCleared || s == PaymentStatusRejected || s == PaymentStatusExpired
}

// String returns the string representation
func (s PaymentStatus) String() string {
	return string(s)
}
