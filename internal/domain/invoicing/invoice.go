// Package invoicing models invoices, their payment history, cheque clearance
// and partial returns.
package invoicing

import (
	"sort"
	"time"

	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/partner"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReturnWindow is how long after creation an invoice accepts returns
const ReturnWindow = 14 * 24 * time.Hour

// Invoice is the aggregate root for a sale. TotalAmount is a snapshot of
// EffectiveTotal rewritten by every recomputation; it is never an input.
type Invoice struct {
	shared.BaseAggregateRoot
	ID          string
	CustomerID  uint
	Customer    *partner.Customer
	Status      InvoiceStatus
	TotalAmount decimal.Decimal
	Items       []InvoiceItem
	Payments    []Payment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InvoiceItem is one stock line. ProductID is the product of the stock row at
// the time of sale.
type InvoiceItem struct {
	ID             uint
	InvoiceID      string
	StockID        uint
	ProductID      uint
	Qty            int
	SellingPrice   decimal.Decimal
	DiscountAmount decimal.Decimal
	ReturnedQty    int
	CreatedAt      time.Time
	Stock          *inventory.Stock
}

// Gross is selling price times purchased quantity
func (i *InvoiceItem) Gross() decimal.Decimal {
	return i.SellingPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// EffectiveQty is the purchased quantity not yet returned
func (i *InvoiceItem) EffectiveQty() int {
	return i.Qty - i.ReturnedQty
}

// DiscountFor prorates the line discount over units
func (i *InvoiceItem) DiscountFor(units int) decimal.Decimal {
	if i.Qty == 0 || units == 0 {
		return decimal.Zero
	}
	return i.DiscountAmount.Mul(decimal.NewFromInt(int64(units))).Div(decimal.NewFromInt(int64(i.Qty)))
}

// ValueOf is the net revenue of units of this line
func (i *InvoiceItem) ValueOf(units int) decimal.Decimal {
	return i.SellingPrice.Mul(decimal.NewFromInt(int64(units))).Sub(i.DiscountFor(units))
}

// EffectiveRevenue is the net revenue of the units still sold
func (i *InvoiceItem) EffectiveRevenue() decimal.Decimal {
	return i.ValueOf(i.EffectiveQty())
}

// EffectiveCost is the buying cost of the units still sold, zero when the stock row is not loaded
func (i *InvoiceItem) EffectiveCost() decimal.Decimal {
	if i.Stock == nil {
		return decimal.Zero
	}
	return i.Stock.BuyingPrice.Mul(decimal.NewFromInt(int64(i.EffectiveQty())))
}

// NewInvoice builds a validated invoice with its first payment row. stocks
// must hold every stock referenced by the draft, already checked for quantity.
func NewInvoice(id string, draft InvoiceDraft, stocks map[uint]*inventory.Stock, now time.Time) (*Invoice, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	inv := &Invoice{
		ID:         id,
		CustomerID: draft.CustomerID,
		Status:     InvoiceStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, line := range draft.Items {
		stock, ok := stocks[line.StockID]
		if !ok {
			return nil, inventory.StockNotFound(line.StockID)
		}
		inv.Items = append(inv.Items, InvoiceItem{
			InvoiceID:      id,
			StockID:        line.StockID,
			ProductID:      stock.ProductID,
			Qty:            line.Qty,
			SellingPrice:   line.SellingPrice,
			DiscountAmount: line.DiscountAmount,
			CreatedAt:      now,
			Stock:          stock,
		})
	}
	if total := inv.EffectiveTotal(); shared.Round2(draft.PaidAmount).GreaterThan(shared.Round2(total)) {
		return nil, Overpayment(draft.PaidAmount, total)
	}
	first := newPayment(draft.PaidAmount, draft.PaymentType, draft.Cheque, now)
	first.InvoiceID = id
	inv.Payments = append(inv.Payments, first)
	inv.Recompute(now)
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// Total is the original invoice value: gross minus line discounts
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range inv.Items {
		total = total.Add(inv.Items[i].Gross()).Sub(inv.Items[i].DiscountAmount)
	}
	return total
}

// EffectiveTotal is the value of the units not returned
func (inv *Invoice) EffectiveTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range inv.Items {
		total = total.Add(inv.Items[i].EffectiveRevenue())
	}
	return total
}

// SettledPaid sums cleared payments and refunds
func (inv *Invoice) SettledPaid() decimal.Decimal {
	return inv.sumPayments((*Payment).Settled)
}

// CommittedPaid sums every payment except rejected or expired cheques
func (inv *Invoice) CommittedPaid() decimal.Decimal {
	return inv.sumPayments((*Payment).Committed)
}

func (inv *Invoice) sumPayments(include func(*Payment) bool) decimal.Decimal {
	sum := decimal.Zero
	for i := range inv.Payments {
		if include(&inv.Payments[i]) {
			sum = sum.Add(inv.Payments[i].PaidAmount)
		}
	}
	return sum
}

// Outstanding is the effective total minus settled funds, never negative
func (inv *Invoice) Outstanding() decimal.Decimal {
	rest := inv.EffectiveTotal().Sub(inv.SettledPaid())
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// Recompute refreshes the derived status and the total snapshot
func (inv *Invoice) Recompute(now time.Time) {
	total := inv.EffectiveTotal()
	inv.TotalAmount = shared.Round2(total)
	inv.Status = ComputeStatus(inv.SettledPaid(), total)
	inv.UpdatedAt = now
}

// AppendPayment records a further CASH or CHEQUE payment
func (inv *Invoice) AppendPayment(amount decimal.Decimal, paymentType PaymentType, cheque *ChequeInput, now time.Time) (*Payment, error) {
	if amount.IsNegative() {
		return nil, shared.ErrInvalidInput.WithDetails("Paid amount must not be negative.")
	}
	if paymentType != PaymentTypeCash && paymentType != PaymentTypeCheque {
		return nil, ErrInvalidPaymentType.WithDetails("Payment type must be CASH or CHEQUE.")
	}
	if paymentType == PaymentTypeCheque && !cheque.complete() {
		return nil, ErrMissingChequeDetail
	}
	total := inv.EffectiveTotal()
	attempted := inv.CommittedPaid().Add(amount)
	if shared.Round2(attempted).GreaterThan(shared.Round2(total)) {
		return nil, Overpayment(attempted, total)
	}
	p := newPayment(amount, paymentType, cheque, now)
	p.InvoiceID = inv.ID
	inv.Payments = append(inv.Payments, p)
	inv.Recompute(now)
	added := &inv.Payments[len(inv.Payments)-1]
	inv.AddDomainEvent(NewPaymentRecordedEvent(inv, added))
	return added, nil
}

// Payment returns the payment with the given id
func (inv *Invoice) Payment(paymentID uint) *Payment {
	for i := range inv.Payments {
		if inv.Payments[i].ID == paymentID {
			return &inv.Payments[i]
		}
	}
	return nil
}

// ChequeOutcome describes what UpdateChequeStatus did to the payment row
type ChequeOutcome int

const (
	// ChequeUnchanged means nothing needs persisting
	ChequeUnchanged ChequeOutcome = iota
	// ChequeTransitioned means the requested status was applied
	ChequeTransitioned
	// ChequeLapsed means an overdue cheque was expired instead; the change
	// must be persisted even though ErrChequeExpired is returned
	ChequeLapsed
)

// UpdateChequeStatus moves a cheque through PENDING -> CLEARED | REJECTED | EXPIRED.
// An overdue pending cheque is expired before the request is considered.
func (inv *Invoice) UpdateChequeStatus(paymentID uint, status PaymentStatus, now time.Time) (*Payment, ChequeOutcome, error) {
	p := inv.Payment(paymentID)
	if p == nil || p.Cheque == nil {
		return nil, ChequeUnchanged, ErrChequeNotFound
	}
	if !status.IsChequeStatus() {
		return p, ChequeUnchanged, shared.ErrInvalidInput.WithDetails("Status must be PENDING, CLEARED, REJECTED or EXPIRED.")
	}
	if p.Cheque.Overdue(now) {
		from := p.Cheque.Status
		p.setStatus(PaymentStatusExpired, now)
		inv.Recompute(now)
		inv.AddDomainEvent(NewChequeStatusChangedEvent(inv, p, from))
		return p, ChequeLapsed, ErrChequeExpired
	}
	current := p.Cheque.Status
	if current == status {
		return p, ChequeUnchanged, nil
	}
	if current.IsTerminal() {
		return p, ChequeUnchanged, invalidChequeTransition(current, status)
	}
	p.setStatus(status, now)
	inv.Recompute(now)
	inv.AddDomainEvent(NewChequeStatusChangedEvent(inv, p, current))
	return p, ChequeTransitioned, nil
}

// HasOverdueCheques reports whether any pending cheque is dated before the day of now
func (inv *Invoice) HasOverdueCheques(now time.Time) bool {
	return HasOverdueCheque(inv.Payments, now)
}

// ExpireOverdueCheques expires every overdue pending cheque and returns the affected rows
func (inv *Invoice) ExpireOverdueCheques(now time.Time) []*Payment {
	expired := ExpireOverdue(inv.Payments, now)
	if len(expired) == 0 {
		return nil
	}
	inv.Recompute(now)
	for _, p := range expired {
		inv.AddDomainEvent(NewChequeStatusChangedEvent(inv, p, PaymentStatusPending))
	}
	return expired
}

// ReturnWindowOpen reports whether returns are still accepted at now
func (inv *Invoice) ReturnWindowOpen(now time.Time) bool {
	return now.Sub(inv.CreatedAt) <= ReturnWindow
}

// itemsOfProduct returns the lines carrying productID in creation order
func (inv *Invoice) itemsOfProduct(productID uint) []*InvoiceItem {
	var items []*InvoiceItem
	for i := range inv.Items {
		if inv.Items[i].ProductID == productID {
			items = append(items, &inv.Items[i])
		}
	}
	sort.SliceStable(items, func(a, b int) bool {
		if !items[a].CreatedAt.Equal(items[b].CreatedAt) {
			return items[a].CreatedAt.Before(items[b].CreatedAt)
		}
		return items[a].ID < items[b].ID
	})
	return items
}

// ApplyReturn takes qty units of productID back, consuming lines in creation
// order, and records the refund as a negative RETURN payment.
func (inv *Invoice) ApplyReturn(productID uint, qty int, reason string, now time.Time) (*ProductReturn, error) {
	if qty <= 0 {
		return nil, shared.ErrInvalidInput.WithDetails("Return quantity must be greater than 0.")
	}
	if !inv.ReturnWindowOpen(now) {
		return nil, ErrReturnWindowExpired
	}
	items := inv.itemsOfProduct(productID)
	if len(items) == 0 {
		return nil, ErrProductNotOnInvoice
	}
	remaining := 0
	for _, item := range items {
		remaining += item.EffectiveQty()
	}
	if qty > remaining {
		return nil, ErrReturnQtyExceedsPurchased.WithDetails(
			returnQtyDetail(qty, remaining))
	}

	ret := &ProductReturn{
		InvoiceID: inv.ID,
		ProductID: productID,
		ReturnQty: qty,
		Reason:    reason,
		CreatedAt: now,
	}
	before := shared.Round2(inv.EffectiveTotal())
	returned := decimal.Zero
	left := qty
	for _, item := range items {
		if left == 0 {
			break
		}
		take := min(left, item.EffectiveQty())
		if take == 0 {
			continue
		}
		lineBefore := shared.Round2(item.EffectiveRevenue())
		item.ReturnedQty += take
		value := lineBefore.Sub(shared.Round2(item.EffectiveRevenue()))
		ret.Items = append(ret.Items, ReturnItem{
			InvoiceItemID:  item.ID,
			StockID:        item.StockID,
			ReturnedQty:    take,
			SellingPrice:   item.SellingPrice,
			DiscountAmount: item.SellingPrice.Mul(decimal.NewFromInt(int64(take))).Sub(value),
		})
		returned = returned.Add(value)
		left -= take
	}
	// The refund is the drop in the rounded total; rounding residue lands on the last line
	ret.RefundAmount = before.Sub(shared.Round2(inv.EffectiveTotal()))
	if diff := returned.Sub(ret.RefundAmount); !diff.IsZero() {
		last := &ret.Items[len(ret.Items)-1]
		last.DiscountAmount = last.DiscountAmount.Add(diff)
	}

	p := newPayment(ret.RefundAmount.Neg(), PaymentTypeCash, nil, now)
	p.InvoiceID = inv.ID
	p.Status = PaymentStatusReturn
	inv.Payments = append(inv.Payments, p)
	inv.Recompute(now)
	inv.AddDomainEvent(NewReturnProcessedEvent(inv, ret))
	return ret, nil
}

// RefundPayment returns the payment row appended by the last ApplyReturn
func (inv *Invoice) RefundPayment() *Payment {
	for i := len(inv.Payments) - 1; i >= 0; i-- {
		if inv.Payments[i].IsRefund() {
			return &inv.Payments[i]
		}
	}
	return nil
}
