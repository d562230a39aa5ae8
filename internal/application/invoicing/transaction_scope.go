package invoicing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/invoicing"
)

// TransactionScope provides transactional access to the repositories an
// invoice mutation touches. Everything done inside Execute commits or rolls
// back as one unit.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories sharing one transaction
type TransactionalRepositories interface {
	InvoiceRepo() invoicing.InvoiceRepository
	ReturnRepo() invoicing.ReturnRepository
	StockRepo() inventory.StockRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	invoiceRepo invoicing.InvoiceRepository
	returnRepo  invoicing.ReturnRepository
	stockRepo   inventory.StockRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	invoiceRepo invoicing.InvoiceRepository,
	returnRepo invoicing.ReturnRepository,
	stockRepo inventory.StockRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo: invoiceRepo,
		returnRepo:  returnRepo,
		stockRepo:   stockRepo,
	}
}

// Execute runs fn without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() invoicing.InvoiceRepository {
	return s.invoiceRepo
}

// ReturnRepo returns the product return repository
func (s *NoOpTransactionScope) ReturnRepo() invoicing.ReturnRepository {
	return s.returnRepo
}

// StockRepo returns the stock repository
func (s *NoOpTransactionScope) StockRepo() inventory.StockRepository {
	return s.stockRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
