// Package inventory holds stock-keeping units and the ledger that reserves
// and restocks them.
package inventory

import (
	"fmt"
	"time"

	"github.com/erp/invoicing/internal/domain/catalog"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Stock errors
var (
	ErrStockNotFound     = shared.NewNotFoundError("STOCK_NOT_FOUND", "Stock not found")
	ErrInsufficientStock = shared.NewConflictError("INSUFFICIENT_STOCK", "Insufficient stock available")
)

// StockNotFound builds the not-found error for a specific stock id
func StockNotFound(id uint) error {
	return ErrStockNotFound.WithMessage(fmt.Sprintf("Stock ID %d not found", id))
}

// InsufficientStock builds the conflict error quoting available vs required
func InsufficientStock(title string, available, required int) error {
	return ErrInsufficientStock.WithMessage(fmt.Sprintf(
		"Insufficient stock for product %q. Available: %d, Required: %d", title, available, required))
}

// Stock is one priced lot of a product, optionally tied to a vendor.
// Qty never drops below zero.
type Stock struct {
	shared.BaseEntity
	ProductID    uint
	VendorID     *uint
	BuyingPrice  decimal.Decimal
	SellingPrice decimal.Decimal
	Qty          int
	Status       shared.RecordStatus
	Product      *catalog.Product
}

// StockDetails carries the fields of a new or edited stock row
type StockDetails struct {
	ProductID    uint
	VendorID     *uint
	BuyingPrice  decimal.Decimal
	SellingPrice decimal.Decimal
	Qty          int
}

func (d StockDetails) validate() error {
	var v shared.ValidationErrors
	v.Check(d.ProductID == 0, "Valid product ID required.")
	v.Check(d.BuyingPrice.IsNegative(), "Buying price must not be negative.")
	v.Check(d.SellingPrice.IsNegative(), "Selling price must not be negative.")
	v.Check(d.Qty < 0, "Quantity must not be negative.")
	return v.Err()
}

// NewStock creates an active stock row
func NewStock(details StockDetails, now time.Time) (*Stock, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}
	s := &Stock{
		ProductID:    details.ProductID,
		VendorID:     details.VendorID,
		BuyingPrice:  details.BuyingPrice,
		SellingPrice: details.SellingPrice,
		Qty:          details.Qty,
		Status:       shared.StatusActive,
	}
	s.Touch(now)
	return s, nil
}

// SameLot reports whether details describe this row's product, vendor and prices,
// in which case a create merges into it instead of adding a row.
func (s *Stock) SameLot(details StockDetails) bool {
	if s.ProductID != details.ProductID || !s.BuyingPrice.Equal(details.BuyingPrice) ||
		!s.SellingPrice.Equal(details.SellingPrice) {
		return false
	}
	switch {
	case s.VendorID == nil && details.VendorID == nil:
		return true
	case s.VendorID == nil || details.VendorID == nil:
		return false
	default:
		return *s.VendorID == *details.VendorID
	}
}

// Merge adds qty from a matching create
func (s *Stock) Merge(qty int, now time.Time) error {
	if qty < 0 {
		return shared.ErrInvalidInput.WithDetails("Quantity must not be negative.")
	}
	s.Qty += qty
	if s.Qty > 0 {
		s.Status = shared.StatusActive
	}
	s.Touch(now)
	return nil
}

// StockUpdate is a partial edit; nil fields are left untouched
type StockUpdate struct {
	BuyingPrice  *decimal.Decimal
	SellingPrice *decimal.Decimal
	Qty          *int
	Status       *shared.RecordStatus
}

// Apply applies a partial edit
func (s *Stock) Apply(u StockUpdate, now time.Time) error {
	var v shared.ValidationErrors
	v.Check(u.BuyingPrice != nil && u.BuyingPrice.IsNegative(), "Buying price must not be negative.")
	v.Check(u.SellingPrice != nil && u.SellingPrice.IsNegative(), "Selling price must not be negative.")
	v.Check(u.Qty != nil && *u.Qty < 0, "Quantity must not be negative.")
	v.Check(u.Status != nil && !u.Status.IsValid(), "Status must be ACTIVE or INACTIVE.")
	if err := v.Err(); err != nil {
		return err
	}
	if u.BuyingPrice != nil {
		s.BuyingPrice = *u.BuyingPrice
	}
	if u.SellingPrice != nil {
		s.SellingPrice = *u.SellingPrice
	}
	if u.Qty != nil {
		s.Qty = *u.Qty
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	s.Touch(now)
	return nil
}

// ProductTitle returns the product title or a placeholder
func (s *Stock) ProductTitle() string {
	if s.Product == nil || s.Product.Title == "" {
		return fmt.Sprintf("stock #%d", s.ID)
	}
	return s.Product.Title
}

// CategoryName returns the category of the stocked product
func (s *Stock) CategoryName() string {
	if s.Product == nil {
		return "Uncategorized"
	}
	return s.Product.CategoryName()
}

// CanFulfil checks that qty units are available
func (s *Stock) CanFulfil(qty int) error {
	if s.Qty < qty {
		return InsufficientStock(s.ProductTitle(), s.Qty, qty)
	}
	return nil
}

// IsActive reports whether the row is sellable
func (s *Stock) IsActive() bool {
	return s.Status.IsActive()
}
