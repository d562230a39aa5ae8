package invoicing

import (
	"fmt"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Invoice errors
var (
	ErrInvoiceNotFound            = shared.NewNotFoundError("INVOICE_NOT_FOUND", "Invoice not found")
	ErrInvalidPaymentType         = shared.NewValidationError("INVALID_PAYMENT_TYPE", "Invalid payment type")
	ErrMissingChequeDetail        = shared.NewValidationError("MISSING_CHEQUE_DETAIL", "Cheque number, bank name and cheque date are required for cheque payments")
	ErrInvalidPurchaseOrderAmount = shared.NewValidationError("INVALID_PURCHASE_ORDER_AMOUNT", "Paid amount must be 0 for purchase order payments")
	ErrOverpayment                = shared.NewConflictError("OVERPAYMENT", "Paid amount exceeds total invoice amount.")
)

// Cheque errors
var (
	ErrChequeNotFound          = shared.NewNotFoundError("CHEQUE_NOT_FOUND", "Cheque details not found for this payment")
	ErrChequeExpired           = shared.NewStateError("CHEQUE_EXPIRED", "Cheque has expired and cannot be updated")
	ErrInvalidChequeTransition = shared.NewStateError("INVALID_CHEQUE_TRANSITION", "Cheque status cannot be changed")
)

// Return errors
var (
	ErrReturnWindowExpired       = shared.NewStateError("RETURN_WINDOW_EXPIRED", "Return period has expired")
	ErrProductNotOnInvoice       = shared.NewNotFoundError("PRODUCT_NOT_ON_INVOICE", "Product not found in this invoice")
	ErrReturnQtyExceedsPurchased = shared.NewStateError("RETURN_QTY_EXCEEDS_PURCHASED", "Return quantity exceeds purchased quantity")
)

// Overpayment builds the overpayment error quoting the attempted total and the invoice total
func Overpayment(totalPaid, invoiceTotal decimal.Decimal) error {
	return ErrOverpayment.WithDetails(fmt.Sprintf("Total paid (%s) cannot exceed invoice total (%s)",
		shared.FormatAmount(totalPaid), shared.FormatAmount(invoiceTotal)))
}

func invalidChequeTransition(from, to PaymentStatus) error {
	return ErrInvalidChequeTransition.WithDetails(fmt.Sprintf("Cannot change cheque status from %s to %s", from, to))
}
