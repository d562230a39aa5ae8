package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/catalog"
	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/partner"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

var (
	cables  = &catalog.Category{BaseEntity: shared.BaseEntity{ID: 1}, Name: "Cables"}
	lamps   = &catalog.Category{BaseEntity: shared.BaseEntity{ID: 2}, Name: "Lighting"}
	cable   = &inventory.Stock{BaseEntity: shared.BaseEntity{ID: 1}, ProductID: 10, BuyingPrice: dec("6"), Product: &catalog.Product{BaseEntity: shared.BaseEntity{ID: 10}, Title: "Cable 2.5mm", Category: cables}}
	bulb    = &inventory.Stock{BaseEntity: shared.BaseEntity{ID: 2}, ProductID: 20, BuyingPrice: dec("60"), Product: &catalog.Product{BaseEntity: shared.BaseEntity{ID: 20}, Title: "LED Panel", Category: lamps}}
	active  = &partner.Customer{BaseEntity: shared.BaseEntity{ID: 1}, Name: "Perera Electricals", Status: shared.StatusActive}
	retired = &partner.Customer{BaseEntity: shared.BaseEntity{ID: 2}, Name: "Old Account", Status: shared.StatusInactive}
)

func invoice(id string, customer *partner.Customer, created time.Time, items []invoicing.InvoiceItem, payments ...invoicing.Payment) invoicing.Invoice {
	return invoicing.Invoice{
		ID:         id,
		CustomerID: customer.ID,
		Customer:   customer,
		Items:      items,
		Payments:   payments,
		CreatedAt:  created,
	}
}

func line(stock *inventory.Stock, qty, returned int, price, discount string) invoicing.InvoiceItem {
	return invoicing.InvoiceItem{StockID: stock.ID, ProductID: stock.ProductID, Qty: qty, ReturnedQty: returned, SellingPrice: dec(price), DiscountAmount: dec(discount), Stock: stock}
}

func pay(amount string, t invoicing.PaymentType, s invoicing.PaymentStatus) invoicing.Payment {
	return invoicing.Payment{PaidAmount: dec(amount), PaymentType: t, Status: s}
}

func fixture() []invoicing.Invoice {
	feb := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return []invoicing.Invoice{
		// 2 bulbs, 1 returned: effective 100, paid 200 cash minus 100 refund
		invoice("A", active, feb, []invoicing.InvoiceItem{line(bulb, 2, 1, "100", "0")},
			pay("200", invoicing.PaymentTypeCash, invoicing.PaymentStatusCleared),
			pay("-100", invoicing.PaymentTypeCash, invoicing.PaymentStatusReturn)),
		// 10 cable at 10 with 20 discount: 80, pending cheque
		invoice("B", active, mar, []invoicing.InvoiceItem{line(cable, 10, 0, "10", "20")},
			pay("80", invoicing.PaymentTypeCheque, invoicing.PaymentStatusPending)),
		// cleared cheque 50 of 100, rejected cheque 50
		invoice("C", active, mar, []invoicing.InvoiceItem{line(bulb, 1, 0, "100", "0")},
			pay("50", invoicing.PaymentTypeCheque, invoicing.PaymentStatusCleared),
			pay("50", invoicing.PaymentTypeCheque, invoicing.PaymentStatusRejected)),
		invoice("D", retired, mar, []invoicing.InvoiceItem{line(cable, 5, 0, "10", "0")},
			pay("50", invoicing.PaymentTypeCash, invoicing.PaymentStatusCleared)),
	}
}

func TestAggregate_ActiveOnly(t *testing.T) {
	d := Aggregate(fixture(), Query{Visibility: shared.ActiveOnly})

	assert.Equal(t, 3, d.TotalOrders)
	assert.True(t, d.TotalRevenue.Equal(dec("280")), d.TotalRevenue.String())
	// cost: 1 bulb (60) + 10 cable (60) + 1 bulb (60)
	assert.True(t, d.TotalProfit.Equal(dec("100")), d.TotalProfit.String())
	assert.True(t, d.AverageOrderValue.Equal(dec("93.33")), d.AverageOrderValue.String())
	assert.True(t, d.TotalPaid.Equal(dec("150")), d.TotalPaid.String())
	assert.True(t, d.TotalPending.Equal(dec("130")), d.TotalPending.String())

	require.Len(t, d.CategorySales, 2)
	assert.Equal(t, CategorySales{Category: "Cables", Qty: 10}, d.CategorySales[0])
	assert.Equal(t, CategorySales{Category: "Lighting", Qty: 2}, d.CategorySales[1])

	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, "Cable 2.5mm", d.TopProducts[0].Title)
	assert.Equal(t, 10, d.TopProducts[0].Qty)
	assert.True(t, d.TopProducts[1].Revenue.Equal(dec("200")))

	require.Len(t, d.TopCustomers, 1)
	assert.Equal(t, "Perera Electricals", d.TopCustomers[0].Name)
	assert.Equal(t, 3, d.TopCustomers[0].Orders)
	assert.True(t, d.TopCustomers[0].Total.Equal(dec("280")))

	require.Len(t, d.Monthly, 2)
	assert.Equal(t, "2026-02", d.Monthly[0].Month)
	assert.Equal(t, 1, d.Monthly[0].PaidCount)
	assert.True(t, d.Monthly[0].Pending.IsZero())
	assert.Equal(t, "2026-03", d.Monthly[1].Month)
	assert.Equal(t, 0, d.Monthly[1].PaidCount)
	assert.Equal(t, 2, d.Monthly[1].PendingCount)
	assert.True(t, d.Monthly[1].Paid.Equal(dec("50")))
	assert.True(t, d.Monthly[1].Pending.Equal(dec("130")))

	require.Len(t, d.SalesTrend, 2)
	assert.True(t, d.SalesTrend[0].Amount.Equal(dec("200")))
	assert.True(t, d.SalesTrend[1].Amount.Equal(dec("50")))
}

func TestAggregate_IncludeInactive(t *testing.T) {
	d := Aggregate(fixture(), Query{Visibility: shared.IncludeInactive})

	assert.Equal(t, 4, d.TotalOrders)
	assert.True(t, d.TotalRevenue.Equal(dec("330")))
	require.Len(t, d.TopCustomers, 2)
	assert.Equal(t, "Old Account", d.TopCustomers[1].Name)
	assert.Equal(t, 1, d.Monthly[1].PaidCount)
}

func TestAggregate_InactiveProductLeavesRankings(t *testing.T) {
	heaters := &catalog.Category{BaseEntity: shared.BaseEntity{ID: 3}, Name: "Heaters"}
	heater := &inventory.Stock{BaseEntity: shared.BaseEntity{ID: 3}, ProductID: 30, BuyingPrice: dec("40"),
		Product: &catalog.Product{BaseEntity: shared.BaseEntity{ID: 30}, Title: "Fan Heater", Category: heaters, Status: shared.StatusInactive}}
	invoices := append(fixture(), invoice("E", active, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
		[]invoicing.InvoiceItem{line(heater, 20, 0, "50", "0")},
		pay("1000", invoicing.PaymentTypeCash, invoicing.PaymentStatusCleared)))

	d := Aggregate(invoices, Query{Visibility: shared.ActiveOnly})
	assert.Equal(t, 4, d.TotalOrders)
	assert.True(t, d.TotalRevenue.Equal(dec("1280")), d.TotalRevenue.String())
	require.Len(t, d.CategorySales, 2)
	assert.Equal(t, "Cables", d.CategorySales[0].Category)
	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, "Cable 2.5mm", d.TopProducts[0].Title)

	d = Aggregate(invoices, Query{Visibility: shared.IncludeInactive})
	require.Len(t, d.CategorySales, 3)
	assert.Equal(t, CategorySales{Category: "Heaters", Qty: 20}, d.CategorySales[0])
	require.Len(t, d.TopProducts, 3)
	assert.Equal(t, "Fan Heater", d.TopProducts[0].Title)
}

func TestAggregate_TopFiveOnly(t *testing.T) {
	var invoices []invoicing.Invoice
	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 7; i++ {
		c := &partner.Customer{BaseEntity: shared.BaseEntity{ID: uint(i)}, Name: fmt.Sprintf("Customer %d", i), Status: shared.StatusActive}
		s := &inventory.Stock{BaseEntity: shared.BaseEntity{ID: uint(i)}, ProductID: uint(100 + i), BuyingPrice: dec("1"),
			Product: &catalog.Product{Title: fmt.Sprintf("Product %d", i)}}
		invoices = append(invoices, invoice(fmt.Sprint(i), c, created, []invoicing.InvoiceItem{line(s, i, 0, "10", "0")}))
	}

	d := Aggregate(invoices, Query{})
	require.Len(t, d.TopProducts, TopN)
	assert.Equal(t, 7, d.TopProducts[0].Qty)
	assert.Equal(t, 3, d.TopProducts[4].Qty)
	require.Len(t, d.TopCustomers, TopN)
	assert.Equal(t, uint(7), d.TopCustomers[0].CustomerID)
	assert.Equal(t, "Uncategorized", d.CategorySales[0].Category)
}

func TestAggregate_Empty(t *testing.T) {
	d := Aggregate(nil, Query{})
	assert.Zero(t, d.TotalOrders)
	assert.True(t, d.AverageOrderValue.IsZero())
	assert.Empty(t, d.TopProducts)
	assert.NotNil(t, d.Monthly)
}
