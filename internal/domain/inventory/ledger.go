package inventory

import (
	"context"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
)

// DepletionPolicy decides what happens to a stock row whose quantity reaches zero
type DepletionPolicy struct {
	// DeactivateOnDepletion marks the row INACTIVE at zero and ACTIVE again on restock
	DeactivateOnDepletion bool
}

// StockRepository is the persistence port for stock rows
type StockRepository interface {
	FindByID(ctx context.Context, id uint) (*Stock, error)
	// FindByIDForUpdate loads the row and holds a row lock until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uint) (*Stock, error)
	FindAll(ctx context.Context, query StockQuery) ([]Stock, error)
	// FindSameLot returns the active row matching details' product, vendor and prices, or nil
	FindSameLot(ctx context.Context, details StockDetails) (*Stock, error)
	Save(ctx context.Context, stock *Stock) error
	// Decrement subtracts qty only while qty units remain, reporting whether it applied
	Decrement(ctx context.Context, id uint, qty int) (bool, error)
	Increment(ctx context.Context, id uint, qty int) error
	UpdateStatus(ctx context.Context, id uint, status shared.RecordStatus) error
}

// StockQuery narrows stock listings
type StockQuery struct {
	Visibility shared.Visibility
	CategoryID *uint
	VendorID   *uint
}

// Ledger reserves and restocks stock rows. Callers run it inside a
// transaction so the row lock spans the whole invoice or return.
type Ledger struct {
	repo   StockRepository
	policy DepletionPolicy
	clock  func() time.Time
}

// NewLedger creates a ledger over repo
func NewLedger(repo StockRepository, policy DepletionPolicy) *Ledger {
	return &Ledger{repo: repo, policy: policy, clock: time.Now}
}

// Check verifies that the stock exists, is sellable and holds qty units
// without changing anything
func (l *Ledger) Check(ctx context.Context, stockID uint, qty int) (*Stock, error) {
	stock, err := l.repo.FindByID(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if !stock.IsActive() && !(l.policy.DeactivateOnDepletion && stock.Qty == 0) {
		return nil, StockNotFound(stockID)
	}
	if err := stock.CanFulfil(qty); err != nil {
		return nil, err
	}
	return stock, nil
}

// Reserve decrements qty units
func (l *Ledger) Reserve(ctx context.Context, stockID uint, qty int) (*Stock, error) {
	if qty <= 0 {
		return nil, shared.ErrInvalidInput.WithDetails("Quantity must be greater than zero.")
	}
	stock, err := l.repo.FindByIDForUpdate(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if err := stock.CanFulfil(qty); err != nil {
		return nil, err
	}
	applied, err := l.repo.Decrement(ctx, stockID, qty)
	if err != nil {
		return nil, err
	}
	if !applied {
		// another writer took the units between the read and the guarded update
		return nil, InsufficientStock(stock.ProductTitle(), stock.Qty, qty)
	}
	stock.Qty -= qty
	if stock.Qty == 0 && l.policy.DeactivateOnDepletion {
		if err := l.repo.UpdateStatus(ctx, stockID, shared.StatusInactive); err != nil {
			return nil, err
		}
		stock.Status = shared.StatusInactive
	}
	stock.Touch(l.clock())
	return stock, nil
}

// Restock returns qty units; there is no upper bound
func (l *Ledger) Restock(ctx context.Context, stockID uint, qty int) (*Stock, error) {
	if qty <= 0 {
		return nil, shared.ErrInvalidInput.WithDetails("Quantity must be greater than zero.")
	}
	stock, err := l.repo.FindByIDForUpdate(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if err := l.repo.Increment(ctx, stockID, qty); err != nil {
		return nil, err
	}
	stock.Qty += qty
	if !stock.IsActive() && l.policy.DeactivateOnDepletion {
		if err := l.repo.UpdateStatus(ctx, stockID, shared.StatusActive); err != nil {
			return nil, err
		}
		stock.Status = shared.StatusActive
	}
	stock.Touch(l.clock())
	return stock, nil
}
