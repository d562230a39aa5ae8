package invoicing

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInvoicePrinter struct {
	mock.Mock
}

func (m *MockInvoicePrinter) Print(ctx context.Context, inv *invoicing.Invoice) ([]byte, error) {
	args := m.Called(ctx, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestPrintService_Print(t *testing.T) {
	repo := new(MockInvoiceRepository)
	printer := new(MockInvoicePrinter)
	inv := &invoicing.Invoice{ID: "111111111111111"}
	repo.On("FindByID", mock.Anything, "111111111111111").Return(inv, nil)
	printer.On("Print", mock.Anything, inv).Return([]byte("%PDF"), nil)

	out, err := NewPrintService(repo, printer, nil).Print(context.Background(), "111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "invoice_111111111111111.pdf", out.Filename)
	assert.Equal(t, []byte("%PDF"), out.Body)
}

func TestPrintService_NotFound(t *testing.T) {
	repo := new(MockInvoiceRepository)
	repo.On("FindByID", mock.Anything, "x").Return(nil, invoicing.ErrInvoiceNotFound)

	_, err := NewPrintService(repo, new(MockInvoicePrinter), nil).Print(context.Background(), "x")
	assert.ErrorIs(t, err, invoicing.ErrInvoiceNotFound)
}

func TestPrintService_PrinterFailure(t *testing.T) {
	repo := new(MockInvoiceRepository)
	printer := new(MockInvoicePrinter)
	inv := &invoicing.Invoice{ID: "1"}
	repo.On("FindByID", mock.Anything, "1").Return(inv, nil)
	printer.On("Print", mock.Anything, inv).Return(nil, errors.New("chrome missing"))

	_, err := NewPrintService(repo, printer, nil).Print(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome missing")
}

func TestPrintService_Disabled(t *testing.T) {
	_, err := NewPrintService(new(MockInvoiceRepository), nil, nil).Print(context.Background(), "1")
	assert.ErrorIs(t, err, ErrPrintingDisabled)
}
