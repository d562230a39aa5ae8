package invoicing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProductReturn is an immutable record of units taken back from an invoice
type ProductReturn struct {
	ID           uint
	InvoiceID    string
	ProductID    uint
	ReturnQty    int
	Reason       string
	RefundAmount decimal.Decimal
	Items        []ReturnItem
	CreatedAt    time.Time
}

// ReturnItem snapshots the line a returned unit came from. DiscountAmount is
// the share of the line discount for the returned units only.
type ReturnItem struct {
	ID              uint
	ProductReturnID uint
	InvoiceItemID   uint
	StockID         uint
	ReturnedQty     int
	SellingPrice    decimal.Decimal
	DiscountAmount  decimal.Decimal
}

func returnQtyDetail(requested, remaining int) string {
	return fmt.Sprintf("Requested %d, but only %d remaining to return.", requested, remaining)
}
