// Package quotation models price quotes offered to customers. A quotation
// checks stock but never reserves it.
package quotation

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/partner"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Validity is how long a quotation stays valid after creation
const Validity = 30 * 24 * time.Hour

// ErrQuotationNotFound is returned for unknown or deleted quotations
var ErrQuotationNotFound = shared.NewNotFoundError("QUOTATION_NOT_FOUND", "Quotation not found")

// QuotationNotFound builds the not-found error for a specific id
func QuotationNotFound(id string) error {
	return ErrQuotationNotFound.WithMessage(fmt.Sprintf("Quotation ID %s not found", id))
}

// Quotation is an offer of stock lines at quoted prices
type Quotation struct {
	ID          string
	CustomerID  uint
	Customer    *partner.Customer
	TotalAmount decimal.Decimal
	ExpiresAt   time.Time
	Status      shared.RecordStatus
	Items       []Item
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item is a quoted stock line
type Item struct {
	ID           uint
	QuotationID  string
	StockID      uint
	Qty          int
	SellingPrice decimal.Decimal
	Stock        *inventory.Stock
}

// ItemDraft is a requested quotation line
type ItemDraft struct {
	StockID      uint
	Qty          int
	SellingPrice decimal.Decimal
}

// Draft is the input of quotation creation. A nil TotalAmount means the sum of the lines.
type Draft struct {
	CustomerID  uint
	TotalAmount *decimal.Decimal
	Items       []ItemDraft
}

// Validate collects every field-level problem
func (d Draft) Validate() error {
	var v shared.ValidationErrors
	v.Check(len(d.Items) == 0, "At least one quotation item required.")
	for i, item := range d.Items {
		v.Check(item.StockID == 0, fmt.Sprintf("Item %d: valid stock ID required.", i+1))
		v.Check(item.Qty <= 0, fmt.Sprintf("Item %d: quantity must be greater than 0.", i+1))
		v.Check(item.SellingPrice.IsNegative(), fmt.Sprintf("Item %d: selling price must not be negative.", i+1))
	}
	v.Check(d.TotalAmount != nil && d.TotalAmount.IsNegative(), "Total amount must not be negative.")
	return v.Err()
}

// New builds a quotation expiring Validity after now
func New(id string, draft Draft, now time.Time) (*Quotation, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	q := &Quotation{
		ID:         id,
		CustomerID: draft.CustomerID,
		ExpiresAt:  now.Add(Validity),
		Status:     shared.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	lines := decimal.Zero
	for _, line := range draft.Items {
		q.Items = append(q.Items, Item{
			QuotationID:  id,
			StockID:      line.StockID,
			Qty:          line.Qty,
			SellingPrice: line.SellingPrice,
		})
		lines = lines.Add(line.SellingPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	q.TotalAmount = lines
	if draft.TotalAmount != nil {
		q.TotalAmount = *draft.TotalAmount
	}
	return q, nil
}

// UpdateTotal replaces the quoted total
func (q *Quotation) UpdateTotal(total decimal.Decimal, now time.Time) error {
	if total.IsNegative() {
		return shared.ErrInvalidInput.WithDetails("Valid total amount is required.")
	}
	q.TotalAmount = total
	q.UpdatedAt = now
	return nil
}

// Delete soft-deletes the quotation
func (q *Quotation) Delete(now time.Time) {
	q.Status = shared.StatusInactive
	q.UpdatedAt = now
}

// Expired reports whether the quotation is past its validity at now
func (q *Quotation) Expired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// Repository persists quotations
type Repository interface {
	// FindByID returns ACTIVE quotations only
	FindByID(ctx context.Context, id string) (*Quotation, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Quotation, error)
	Create(ctx context.Context, q *Quotation) error
	Save(ctx context.Context, q *Quotation) error
}
