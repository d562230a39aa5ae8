// Package report aggregates invoices into dashboard figures. Aggregation is
// pure: callers load the invoices and pass them in.
package report

import (
	"sort"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TopN is the length of the top products and top customers lists
const TopN = 5

const monthLayout = "2006-01"

// Query selects the invoices a dashboard covers
type Query struct {
	Period     shared.Period
	Visibility shared.Visibility
}

// Dashboard is the aggregated view of a period
type Dashboard struct {
	Period            shared.Period   `json:"period"`
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalProfit       decimal.Decimal `json:"total_profit"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	TotalPending      decimal.Decimal `json:"total_pending"`
	CategorySales     []CategorySales `json:"category_sales"`
	TopProducts       []ProductSales  `json:"top_products"`
	TopCustomers      []CustomerSales `json:"top_customers"`
	Monthly           []MonthlyTotals `json:"monthly"`
	SalesTrend        []TrendPoint    `json:"sales_trend"`
}

// CategorySales is the quantity sold per category
type CategorySales struct {
	Category string `json:"category"`
	Qty      int    `json:"qty"`
}

// ProductSales ranks a product by quantity sold
type ProductSales struct {
	ProductID uint            `json:"product_id"`
	Title     string          `json:"title"`
	Qty       int             `json:"qty"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// CustomerSales ranks a customer by effective spend
type CustomerSales struct {
	CustomerID uint            `json:"customer_id"`
	Name       string          `json:"name"`
	Orders     int             `json:"orders"`
	Total      decimal.Decimal `json:"total"`
}

// MonthlyTotals is the per-month breakdown. Paid holds settled funds only.
type MonthlyTotals struct {
	Month        string          `json:"month"`
	Total        decimal.Decimal `json:"total"`
	Paid         decimal.Decimal `json:"paid"`
	Pending      decimal.Decimal `json:"pending"`
	PaidCount    int             `json:"paid_count"`
	PendingCount int             `json:"pending_count"`
}

// TrendPoint is the cleared receipts of one month
type TrendPoint struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Aggregate computes the dashboard over invoices. Invoices of inactive
// customers are skipped unless q.Visibility includes them; lines of inactive
// products still count toward totals but are left out of the category and
// product rankings.
func Aggregate(invoices []invoicing.Invoice, q Query) *Dashboard {
	d := &Dashboard{
		Period:            q.Period,
		TotalRevenue:      decimal.Zero,
		TotalProfit:       decimal.Zero,
		AverageOrderValue: decimal.Zero,
		TotalPaid:         decimal.Zero,
		TotalPending:      decimal.Zero,
	}
	categories := map[string]int{}
	products := map[uint]*ProductSales{}
	customers := map[uint]*CustomerSales{}
	months := map[string]*MonthlyTotals{}
	trend := map[string]decimal.Decimal{}
	cost := decimal.Zero

	for i := range invoices {
		inv := &invoices[i]
		if inv.Customer != nil && !q.Visibility.Admits(inv.Customer.Status) {
			continue
		}
		d.TotalOrders++
		total := inv.EffectiveTotal()
		paid := inv.SettledPaid()
		pending := inv.Outstanding()
		d.TotalRevenue = d.TotalRevenue.Add(total)
		d.TotalPaid = d.TotalPaid.Add(paid)
		d.TotalPending = d.TotalPending.Add(pending)

		for j := range inv.Items {
			item := &inv.Items[j]
			qty := item.EffectiveQty()
			cost = cost.Add(item.EffectiveCost())
			if !q.Visibility.Admits(productStatusOf(item)) {
				continue
			}
			categories[categoryOf(item)] += qty

			ps, ok := products[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Title: titleOf(item), Revenue: decimal.Zero}
				products[item.ProductID] = ps
			}
			ps.Qty += qty
			ps.Revenue = ps.Revenue.Add(item.EffectiveRevenue())
		}

		cs, ok := customers[inv.CustomerID]
		if !ok {
			cs = &CustomerSales{CustomerID: inv.CustomerID, Total: decimal.Zero}
			if inv.Customer != nil {
				cs.Name = inv.Customer.Name
			}
			customers[inv.CustomerID] = cs
		}
		cs.Orders++
		cs.Total = cs.Total.Add(total)

		key := inv.CreatedAt.Format(monthLayout)
		m, ok := months[key]
		if !ok {
			m = &MonthlyTotals{Month: key, Total: decimal.Zero, Paid: decimal.Zero, Pending: decimal.Zero}
			months[key] = m
		}
		m.Total = m.Total.Add(total)
		m.Paid = m.Paid.Add(paid)
		m.Pending = m.Pending.Add(pending)
		if invoicing.ComputeStatus(paid, total) == invoicing.InvoiceStatusPaid {
			m.PaidCount++
		} else {
			m.PendingCount++
		}

		for j := range inv.Payments {
			p := &inv.Payments[j]
			if p.Status == invoicing.PaymentStatusCleared {
				trend[key] = trend[key].Add(p.PaidAmount)
			}
		}
	}

	d.TotalProfit = shared.Round2(d.TotalRevenue.Sub(cost))
	if d.TotalOrders > 0 {
		d.AverageOrderValue = shared.Round2(d.TotalRevenue.Div(decimal.NewFromInt(int64(d.TotalOrders))))
	}
	d.TotalRevenue = shared.Round2(d.TotalRevenue)
	d.TotalPaid = shared.Round2(d.TotalPaid)
	d.TotalPending = shared.Round2(d.TotalPending)

	d.CategorySales = rankCategories(categories)
	d.TopProducts = rankProducts(products)
	d.TopCustomers = rankCustomers(customers)
	d.Monthly = sortMonths(months)
	d.SalesTrend = sortTrend(trend)
	return d
}

func categoryOf(item *invoicing.InvoiceItem) string {
	if item.Stock == nil {
		return "Uncategorized"
	}
	return item.Stock.CategoryName()
}

// productStatusOf treats a line without a loaded product as active
func productStatusOf(item *invoicing.InvoiceItem) shared.RecordStatus {
	if item.Stock == nil || item.Stock.Product == nil || item.Stock.Product.Status == "" {
		return shared.StatusActive
	}
	return item.Stock.Product.Status
}

func titleOf(item *invoicing.InvoiceItem) string {
	if item.Stock == nil || item.Stock.Product == nil {
		return ""
	}
	return item.Stock.Product.Title
}

func rankCategories(in map[string]int) []CategorySales {
	out := make([]CategorySales, 0, len(in))
	for name, qty := range in {
		out = append(out, CategorySales{Category: name, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Qty != out[j].Qty {
			return out[i].Qty > out[j].Qty
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func rankProducts(in map[uint]*ProductSales) []ProductSales {
	out := make([]ProductSales, 0, len(in))
	for _, ps := range in {
		ps.Revenue = shared.Round2(ps.Revenue)
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Qty != out[j].Qty {
			return out[i].Qty > out[j].Qty
		}
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}

func rankCustomers(in map[uint]*CustomerSales) []CustomerSales {
	out := make([]CustomerSales, 0, len(in))
	for _, cs := range in {
		cs.Total = shared.Round2(cs.Total)
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		if out[i].Orders != out[j].Orders {
			return out[i].Orders > out[j].Orders
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}

func sortMonths(in map[string]*MonthlyTotals) []MonthlyTotals {
	out := make([]MonthlyTotals, 0, len(in))
	for _, m := range in {
		m.Total = shared.Round2(m.Total)
		m.Paid = shared.Round2(m.Paid)
		m.Pending = shared.Round2(m.Pending)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func sortTrend(in map[string]decimal.Decimal) []TrendPoint {
	out := make([]TrendPoint, 0, len(in))
	for month, amount := range in {
		out = append(out, TrendPoint{Month: month, Amount: shared.Round2(amount)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
