package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/catalog"
	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/partner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderResult), args.Error(1)
}

func (m *MockRenderer) Close() error { return nil }

func sampleInvoice() *invoicing.Invoice {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	chequeDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &invoicing.Invoice{
		ID:         "123456789012345",
		CustomerID: 1,
		Customer:   &partner.Customer{Name: "Perera & Sons", Phone: "0771234567"},
		Status:     invoicing.InvoiceStatusPartiallyPaid,
		Items: []invoicing.InvoiceItem{{
			StockID:      3,
			ProductID:    7,
			Qty:          2,
			SellingPrice: decimal.NewFromInt(1000),
			Stock:        &inventory.Stock{Product: &catalog.Product{Title: "Ceiling Fan"}},
		}},
		Payments: []invoicing.Payment{
			{PaidAmount: decimal.NewFromInt(1500), PaymentType: invoicing.PaymentTypeCash, Status: invoicing.PaymentStatusCleared, CreatedAt: created},
			{PaidAmount: decimal.NewFromInt(500), PaymentType: invoicing.PaymentTypeCheque, Status: invoicing.PaymentStatusPending, CreatedAt: created,
				Cheque: &invoicing.ChequeDetail{ChequeNumber: "000123", BankName: "BOC", ChequeDate: chequeDate, Status: invoicing.PaymentStatusPending}},
		},
		CreatedAt: created,
	}
}

func TestRenderInvoiceHTML(t *testing.T) {
	doc, err := RenderInvoiceHTML("Lanka Electricals", sampleInvoice())
	require.NoError(t, err)

	assert.Contains(t, doc, "Lanka Electricals")
	assert.Contains(t, doc, "123456789012345")
	assert.Contains(t, doc, "2026-03-01")
	assert.Contains(t, doc, "Perera &amp; Sons")
	assert.Contains(t, doc, "Ceiling Fan")
	assert.Contains(t, doc, "2,000.00")
	assert.Contains(t, doc, "1,500.00")
	assert.Contains(t, doc, "Partially Paid")
	assert.Contains(t, doc, "000123 BOC 2026-03-10")
	// balance counts cleared funds only
	assert.Contains(t, doc, "<td class=\"num\">Balance</td><td class=\"num\">500.00</td>")
}

func TestRenderInvoiceHTML_WithoutCustomerOrStock(t *testing.T) {
	inv := sampleInvoice()
	inv.Customer = nil
	inv.Items[0].Stock = nil
	inv.Payments = nil

	doc, err := RenderInvoiceHTML("Shop", inv)
	require.NoError(t, err)
	assert.Contains(t, doc, "Product #7")
	assert.NotContains(t, doc, "Customer")
	assert.NotContains(t, doc, "Payment date")
}

func TestInvoicePrinter_Print(t *testing.T) {
	renderer := new(MockRenderer)
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(req *RenderRequest) bool {
		return req.Title == "Invoice 123456789012345" && req.PaperSize == PaperSizeA4 && req.FooterHTML != ""
	})).Return(&RenderResult{PDFData: []byte("%PDF-1.4")}, nil)

	pdf, err := NewInvoicePrinter(renderer, "Shop").Print(context.Background(), sampleInvoice())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)
	renderer.AssertExpectations(t)
}

func TestInvoicePrinter_RenderError(t *testing.T) {
	renderer := new(MockRenderer)
	renderer.On("Render", mock.Anything, mock.Anything).
		Return(nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", errors.New("boom")))

	_, err := NewInvoicePrinter(renderer, "Shop").Print(context.Background(), sampleInvoice())
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeRenderFailed, renderErr.Code)
	assert.EqualError(t, err, "chromedp execution failed: boom")
}

func TestValidateRequest(t *testing.T) {
	assert.Error(t, validateRequest(nil))
	assert.Error(t, validateRequest(&RenderRequest{HTML: "  "}))
	assert.Error(t, validateRequest(&RenderRequest{HTML: "<p>x</p>", PaperSize: "Letter"}))

	req := &RenderRequest{HTML: "<p>x</p>"}
	require.NoError(t, validateRequest(req))
	assert.Equal(t, PaperSizeA4, req.PaperSize)
}

func TestBuildPrintParams(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{Scale: 1.0}}

	params := r.buildPrintParams(&RenderRequest{PaperSize: PaperSizeA4, Margins: DefaultMargins()})
	assert.InDelta(t, mmToInches(210), params.paperWidth, 0.01)
	assert.InDelta(t, mmToInches(297), params.paperHeight, 0.01)
	assert.False(t, params.landscape)

	params = r.buildPrintParams(&RenderRequest{PaperSize: PaperSizeA5, Landscape: true, FooterHTML: "<p>1</p>"})
	assert.InDelta(t, mmToInches(148), params.paperWidth, 0.01)
	assert.True(t, params.landscape)
	assert.InDelta(t, mmToInches(10), params.marginBottom, 0.001)
}

func TestBuildCompleteHTML(t *testing.T) {
	wrapped := buildCompleteHTML(&RenderRequest{HTML: "<p>x</p>", Title: "A<B"})
	assert.Contains(t, wrapped, "<!DOCTYPE html>")
	assert.Contains(t, wrapped, "<title>A&lt;B</title>")

	full := "<!DOCTYPE html><html><body>y</body></html>"
	assert.Equal(t, full, buildCompleteHTML(&RenderRequest{HTML: full}))
}
