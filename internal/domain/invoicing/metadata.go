package invoicing

import (
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Metadata summarises a set of invoices
type Metadata struct {
	Count         int
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	PendingAmount decimal.Decimal
	StatusCounts  map[InvoiceStatus]int
}

// Summarize totals invoices by derived status
func Summarize(invoices []Invoice) Metadata {
	m := Metadata{
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
		StatusCounts:  make(map[InvoiceStatus]int, len(AllInvoiceStatuses)),
	}
	for _, s := range AllInvoiceStatuses {
		m.StatusCounts[s] = 0
	}
	for i := range invoices {
		inv := &invoices[i]
		m.Count++
		m.TotalAmount = m.TotalAmount.Add(inv.EffectiveTotal())
		m.PaidAmount = m.PaidAmount.Add(inv.SettledPaid())
		m.PendingAmount = m.PendingAmount.Add(inv.Outstanding())
		m.StatusCounts[ComputeStatus(inv.SettledPaid(), inv.EffectiveTotal())]++
	}
	m.TotalAmount = shared.Round2(m.TotalAmount)
	m.PaidAmount = shared.Round2(m.PaidAmount)
	m.PendingAmount = shared.Round2(m.PendingAmount)
	return m
}
