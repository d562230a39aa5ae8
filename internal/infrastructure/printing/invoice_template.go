package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

var funcMap = template.FuncMap{
	"money": func(d decimal.Decimal) string { return shared.FormatAmount(d) },
	"date":  func(t time.Time) string { return t.Format("2006-01-02") },
	// PARTIALLY_PAID -> Partially Paid
	"label": func(s fmt.Stringer) string {
		return titleCaser.String(strings.ToLower(strings.ReplaceAll(s.String(), "_", " ")))
	},
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(funcMap).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Invoice.ID}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #222; }
h1 { font-size: 18px; margin: 0 0 4px 0; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
th, td { border-bottom: 1px solid #ddd; padding: 4px 6px; text-align: left; }
td.num, th.num { text-align: right; }
.meta td { border: none; padding: 1px 0; }
.totals td { border: none; }
.status { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.ShopName}}</h1>
<table class="meta">
<tr><td>Invoice</td><td>{{.Invoice.ID}}</td></tr>
<tr><td>Date</td><td>{{date .Invoice.CreatedAt}}</td></tr>
{{- with .Invoice.Customer}}
<tr><td>Customer</td><td>{{.Name}}</td></tr>
{{- if .Phone}}<tr><td>Phone</td><td>{{.Phone}}</td></tr>{{end}}
{{- if .Address}}<tr><td>Address</td><td>{{.Address}}</td></tr>{{end}}
{{- end}}
<tr><td>Status</td><td class="status">{{label .Invoice.Status}}</td></tr>
</table>

<table>
<thead><tr><th>Item</th><th class="num">Qty</th><th class="num">Returned</th><th class="num">Unit price</th><th class="num">Discount</th><th class="num">Amount</th></tr></thead>
<tbody>
{{- range .Lines}}
<tr><td>{{.Title}}</td><td class="num">{{.Qty}}</td><td class="num">{{.Returned}}</td><td class="num">{{money .Price}}</td><td class="num">{{money .Discount}}</td><td class="num">{{money .Amount}}</td></tr>
{{- end}}
</tbody>
</table>

{{- if .Payments}}
<table>
<thead><tr><th>Payment date</th><th>Method</th><th>Cheque</th><th>Status</th><th class="num">Amount</th></tr></thead>
<tbody>
{{- range .Payments}}
<tr><td>{{date .CreatedAt}}</td><td>{{label .PaymentType}}</td><td>{{with .Cheque}}{{.ChequeNumber}} {{.BankName}} {{date .ChequeDate}}{{end}}</td><td>{{label .Status}}</td><td class="num">{{money .PaidAmount}}</td></tr>
{{- end}}
</tbody>
</table>
{{- end}}

<table class="totals">
<tr><td class="num">Total</td><td class="num">{{money .Total}}</td></tr>
<tr><td class="num">Paid</td><td class="num">{{money .Paid}}</td></tr>
<tr><td class="num">Balance</td><td class="num">{{money .Balance}}</td></tr>
</table>
</body>
</html>
`))

type invoiceLine struct {
	Title    string
	Qty      int
	Returned int
	Price    decimal.Decimal
	Discount decimal.Decimal
	Amount   decimal.Decimal
}

type invoiceView struct {
	ShopName string
	Invoice  *invoicing.Invoice
	Lines    []invoiceLine
	Payments []invoicing.Payment
	Total    decimal.Decimal
	Paid     decimal.Decimal
	Balance  decimal.Decimal
}

// RenderInvoiceHTML renders the printable invoice document
func RenderInvoiceHTML(shopName string, inv *invoicing.Invoice) (string, error) {
	view := invoiceView{
		ShopName: shopName,
		Invoice:  inv,
		Payments: inv.Payments,
		Total:    inv.EffectiveTotal(),
		Paid:     inv.SettledPaid(),
		Balance:  inv.Outstanding(),
	}
	for i := range inv.Items {
		item := &inv.Items[i]
		title := fmt.Sprintf("Product #%d", item.ProductID)
		if item.Stock != nil {
			title = item.Stock.ProductTitle()
		}
		view.Lines = append(view.Lines, invoiceLine{
			Title:    title,
			Qty:      item.Qty,
			Returned: item.ReturnedQty,
			Price:    item.SellingPrice,
			Discount: item.DiscountAmount,
			Amount:   item.EffectiveRevenue(),
		})
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}
