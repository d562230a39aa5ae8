package printing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
)

const pageFooter = `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// InvoicePrinter prints invoices as A4 PDFs
type InvoicePrinter struct {
	renderer PDFRenderer
	shopName string
}

// NewInvoicePrinter creates a new InvoicePrinter
func NewInvoicePrinter(renderer PDFRenderer, shopName string) *InvoicePrinter {
	return &InvoicePrinter{renderer: renderer, shopName: shopName}
}

// Print renders inv to PDF
func (p *InvoicePrinter) Print(ctx context.Context, inv *invoicing.Invoice) ([]byte, error) {
	doc, err := RenderInvoiceHTML(p.shopName, inv)
	if err != nil {
		return nil, err
	}
	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       doc,
		Title:      "Invoice " + inv.ID,
		PaperSize:  PaperSizeA4,
		Margins:    DefaultMargins(),
		FooterHTML: pageFooter,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}
