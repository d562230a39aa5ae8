package invoicing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one row of an invoice's payment history. PaidAmount is signed:
// refunds are recorded as negative RETURN rows.
type Payment struct {
	ID          uint
	InvoiceID   string
	PaidAmount  decimal.Decimal
	PaymentType PaymentType
	Status      PaymentStatus
	Cheque      *ChequeDetail
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChequeDetail carries the instrument data of a CHEQUE payment
type ChequeDetail struct {
	ID           uint
	PaymentID    uint
	ChequeNumber string
	BankName     string
	ChequeDate   time.Time
	Status       PaymentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChequeInput is the caller-supplied cheque data
type ChequeInput struct {
	ChequeNumber string
	BankName     string
	ChequeDate   *time.Time
}

func (c *ChequeInput) complete() bool {
	return c != nil && strings.TrimSpace(c.ChequeNumber) != "" &&
		strings.TrimSpace(c.BankName) != "" && c.ChequeDate != nil && !c.ChequeDate.IsZero()
}

func newPayment(amount decimal.Decimal, paymentType PaymentType, cheque *ChequeInput, now time.Time) Payment {
	p := Payment{
		PaidAmount:  amount,
		PaymentType: paymentType,
		Status:      PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch paymentType {
	case PaymentTypeCash:
		p.Status = PaymentStatusCleared
	case PaymentTypeCheque:
		p.Cheque = &ChequeDetail{
			ChequeNumber: strings.TrimSpace(cheque.ChequeNumber),
			BankName:     strings.TrimSpace(cheque.BankName),
			ChequeDate:   *cheque.ChequeDate,
			Status:       PaymentStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}
	return p
}

// Settled reports whether the row counts toward the invoice status:
// cleared funds plus (negative) refunds
func (p *Payment) Settled() bool {
	return p.Status == PaymentStatusCleared || p.Status == PaymentStatusReturn
}

// Committed reports whether the row counts toward the overpayment ceiling.
// Pending cheques are committed; rejected or expired ones are not.
func (p *Payment) Committed() bool {
	return p.Status != PaymentStatusRejected && p.Status != PaymentStatusExpired
}

// IsRefund reports whether the row records a return refund
func (p *Payment) IsRefund() bool {
	return p.Status == PaymentStatusReturn
}

func (p *Payment) setStatus(status PaymentStatus, now time.Time) {
	p.Status = status
	p.UpdatedAt = now
	if p.Cheque != nil {
		p.Cheque.Status = status
		p.Cheque.UpdatedAt = now
	}
}

// Overdue reports whether a pending cheque is dated before the day of now.
// Days are taken in the location of now; a cheque dated today is still valid.
func (c *ChequeDetail) Overdue(now time.Time) bool {
	if c.Status != PaymentStatusPending {
		return false
	}
	loc := now.Location()
	return civilDate(c.ChequeDate, loc).Before(civilDate(now, loc))
}

// HasOverdueCheque reports whether any pending cheque among payments is dated before the day of now
func HasOverdueCheque(payments []Payment, now time.Time) bool {
	for i := range payments {
		if c := payments[i].Cheque; c != nil && c.Overdue(now) {
			return true
		}
	}
	return false
}

// ExpireOverdue expires every overdue pending cheque among payments and returns the affected rows
func ExpireOverdue(payments []Payment, now time.Time) []*Payment {
	var expired []*Payment
	for i := range payments {
		p := &payments[i]
		if p.Cheque == nil || !p.Cheque.Overdue(now) {
			continue
		}
		p.setStatus(PaymentStatusExpired, now)
		expired = append(expired, p)
	}
	return expired
}

func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
