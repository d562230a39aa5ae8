package invoicing

import (
	"context"
	"fmt"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoicePrinter renders an invoice to PDF
type InvoicePrinter interface {
	Print(ctx context.Context, inv *invoicing.Invoice) ([]byte, error)
}

// PrintedInvoice is a rendered invoice document
type PrintedInvoice struct {
	Filename string
	Body     []byte
}

// ErrPrintingDisabled is returned when no printer is configured
var ErrPrintingDisabled = shared.ErrInvalidState.WithMessage("Invoice printing is not configured")

// PrintService prints invoices
type PrintService struct {
	invoiceRepo invoicing.InvoiceRepository
	printer     InvoicePrinter
	logger      *zap.Logger
}

// NewPrintService creates a new PrintService. A nil printer disables printing.
func NewPrintService(invoiceRepo invoicing.InvoiceRepository, printer InvoicePrinter, logger *zap.Logger) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrintService{invoiceRepo: invoiceRepo, printer: printer, logger: logger}
}

// Print renders the invoice with all its items and payments
func (s *PrintService) Print(ctx context.Context, invoiceID string) (*PrintedInvoice, error) {
	if s.printer == nil {
		return nil, ErrPrintingDisabled
	}
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	body, err := s.printer.Print(ctx, inv)
	if err != nil {
		s.logger.Error("Failed to print invoice", zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to print invoice %s: %w", invoiceID, err)
	}
	return &PrintedInvoice{
		Filename: fmt.Sprintf("invoice_%s.pdf", inv.ID),
		Body:     body,
	}, nil
}
