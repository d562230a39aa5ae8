package invoicing

import (
	"fmt"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemDraft is a requested invoice line
type ItemDraft struct {
	StockID        uint
	Qty            int
	SellingPrice   decimal.Decimal
	DiscountAmount decimal.Decimal
}

// InvoiceDraft is the input of invoice creation
type InvoiceDraft struct {
	CustomerID  uint
	PaymentType PaymentType
	Items       []ItemDraft
	PaidAmount  decimal.Decimal
	Cheque      *ChequeInput
}

// Validate checks field shapes first, collecting every message, then the
// payment-type rules in order.
func (d InvoiceDraft) Validate() error {
	var v shared.ValidationErrors
	v.Check(len(d.Items) == 0, "At least one item is required.")
	for i, item := range d.Items {
		n := i + 1
		v.Check(item.StockID == 0, fmt.Sprintf("Item %d: valid stock ID required.", n))
		v.Check(item.Qty <= 0, fmt.Sprintf("Item %d: quantity must be greater than 0.", n))
		v.Check(item.SellingPrice.IsNegative(), fmt.Sprintf("Item %d: selling price must not be negative.", n))
		v.Check(item.DiscountAmount.IsNegative(), fmt.Sprintf("Item %d: discount must not be negative.", n))
		if item.Qty > 0 && !item.SellingPrice.IsNegative() {
			gross := item.SellingPrice.Mul(decimal.NewFromInt(int64(item.Qty)))
			v.Check(item.DiscountAmount.GreaterThan(gross), fmt.Sprintf("Item %d: discount cannot exceed line total.", n))
		}
	}
	v.Check(d.PaidAmount.IsNegative(), "Paid amount must not be negative.")
	if err := v.Err(); err != nil {
		return err
	}

	if !d.PaymentType.IsValid() {
		return ErrInvalidPaymentType.WithDetails("Payment type must be CASH, CHEQUE or PURCHASE_ORDER.")
	}
	if d.PaymentType == PaymentTypeCheque && !d.Cheque.complete() {
		return ErrMissingChequeDetail
	}
	if d.PaymentType == PaymentTypePurchaseOrder && !d.PaidAmount.IsZero() {
		return ErrInvalidPurchaseOrderAmount
	}
	return nil
}

// StockDemand sums requested quantity per stock row, so repeated lines for
// one row are checked against its combined demand
func (d InvoiceDraft) StockDemand() map[uint]int {
	demand := make(map[uint]int, len(d.Items))
	for _, item := range d.Items {
		demand[item.StockID] += item.Qty
	}
	return demand
}
