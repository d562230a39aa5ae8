package invoicing

import (
	"context"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
)

// InvoiceRepository persists invoices with their items, payments and cheques
type InvoiceRepository interface {
	// FindByID loads the invoice with items, payments, cheques and customer
	FindByID(ctx context.Context, id string) (*Invoice, error)
	// FindByIDForUpdate is FindByID holding a row lock on the invoice until the transaction ends
	FindByIDForUpdate(ctx context.Context, id string) (*Invoice, error)
	// FindInvoiceIDByPaymentID resolves the owning invoice of a payment row
	FindInvoiceIDByPaymentID(ctx context.Context, paymentID uint) (string, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	// FindAll lists invoices created within filter.Period, items and payments loaded
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	FindPayments(ctx context.Context, invoiceID string) ([]Payment, error)
	// FindWithOverdueCheques lists ids of invoices holding pending cheques dated before day
	FindWithOverdueCheques(ctx context.Context, day time.Time) ([]string, error)

	// Create inserts the invoice, its items and its payment rows
	Create(ctx context.Context, inv *Invoice) error
	// SaveState writes the derived status and total snapshot
	SaveState(ctx context.Context, inv *Invoice) error
	AddPayment(ctx context.Context, p *Payment) error
	// UpdatePaymentStatus writes the status of the payment and of its cheque detail
	UpdatePaymentStatus(ctx context.Context, p *Payment) error
	UpdateReturnedQty(ctx context.Context, item *InvoiceItem) error
}

// ReturnRepository persists product returns
type ReturnRepository interface {
	Create(ctx context.Context, ret *ProductReturn) error
	FindByInvoice(ctx context.Context, invoiceID string) ([]ProductReturn, error)
}
