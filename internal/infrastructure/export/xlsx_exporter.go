// Package export renders dashboards as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/erp/invoicing/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names
const (
	SheetSummary    = "Summary"
	SheetMonthly    = "Monthly"
	SheetProducts   = "Top Products"
	SheetCustomers  = "Top Customers"
	SheetCategories = "Categories"
	SheetTrend      = "Sales Trend"
)

const dateLayout = "2006-01-02"

// XLSXExporter implements the dashboard exporter with excelize
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType returns the XLSX MIME type
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension returns the file extension without the dot
func (e *XLSXExporter) Extension() string {
	return "xlsx"
}

// Export writes one sheet per dashboard section
func (e *XLSXExporter) Export(d *report.Dashboard) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("dashboard is nil")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}

	summary := [][]interface{}{
		{"Metric", "Value"},
		{"From", d.Period.From.Format(dateLayout)},
		{"To", d.Period.To.Format(dateLayout)},
		{"Total orders", d.TotalOrders},
		{"Total revenue", amount(d.TotalRevenue)},
		{"Total profit", amount(d.TotalProfit)},
		{"Average order value", amount(d.AverageOrderValue)},
		{"Total paid", amount(d.TotalPaid)},
		{"Total pending", amount(d.TotalPending)},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}

	monthly := [][]interface{}{{"Month", "Total", "Paid", "Pending", "Paid invoices", "Pending invoices"}}
	for _, m := range d.Monthly {
		monthly = append(monthly, []interface{}{m.Month, amount(m.Total), amount(m.Paid), amount(m.Pending), m.PaidCount, m.PendingCount})
	}
	products := [][]interface{}{{"Product ID", "Product", "Qty", "Revenue"}}
	for _, p := range d.TopProducts {
		products = append(products, []interface{}{p.ProductID, p.Title, p.Qty, amount(p.Revenue)})
	}
	customers := [][]interface{}{{"Customer ID", "Customer", "Orders", "Total"}}
	for _, c := range d.TopCustomers {
		customers = append(customers, []interface{}{c.CustomerID, c.Name, c.Orders, amount(c.Total)})
	}
	categories := [][]interface{}{{"Category", "Qty"}}
	for _, c := range d.CategorySales {
		categories = append(categories, []interface{}{c.Category, c.Qty})
	}
	trend := [][]interface{}{{"Month", "Cleared amount"}}
	for _, p := range d.SalesTrend {
		trend = append(trend, []interface{}{p.Month, amount(p.Amount)})
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{SheetMonthly, monthly},
		{SheetProducts, products},
		{SheetCustomers, customers},
		{SheetCategories, categories},
		{SheetTrend, trend},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return err
		}
	}
	return nil
}

// amount rounds to cents; excelize stores numeric cells as float64
func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
