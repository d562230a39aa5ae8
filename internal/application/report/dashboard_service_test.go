package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/catalog"
	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/partner"
	"github.com/erp/invoicing/internal/domain/report"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportNow = time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC)

type invoiceStub struct {
	invoicing.InvoiceRepository
	invoices []invoicing.Invoice
	filters  []shared.Filter
}

func (s *invoiceStub) FindAll(_ context.Context, filter shared.Filter) ([]invoicing.Invoice, error) {
	s.filters = append(s.filters, filter)
	return s.invoices, nil
}

type mapCache struct {
	entries map[string]*report.Dashboard
}

func (c *mapCache) Get(_ context.Context, key string) (*report.Dashboard, error) {
	return c.entries[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, d *report.Dashboard) error {
	c.entries[key] = d
	return nil
}

type fakeExporter struct{}

func (fakeExporter) Export(d *report.Dashboard) ([]byte, error) {
	return []byte(d.TotalRevenue.String()), nil
}
func (fakeExporter) ContentType() string { return "application/octet-stream" }
func (fakeExporter) Extension() string   { return "xlsx" }

type failingStore struct{ err error }

func (s failingStore) Put(context.Context, string, string, []byte) error { return s.err }

func sampleInvoice(customerStatus shared.RecordStatus) invoicing.Invoice {
	stock := &inventory.Stock{
		BaseEntity:  shared.BaseEntity{ID: 1},
		ProductID:   4,
		BuyingPrice: decimal.NewFromInt(60),
		Product: &catalog.Product{
			BaseEntity: shared.BaseEntity{ID: 4},
			Title:      "LED Bulb",
			Category:   &catalog.Category{BaseEntity: shared.BaseEntity{ID: 2}, Name: "Lighting"},
		},
	}
	return invoicing.Invoice{
		ID:          "100000000000001",
		CustomerID:  9,
		Customer:    &partner.Customer{BaseEntity: shared.BaseEntity{ID: 9}, Name: "Fernando", Status: customerStatus},
		Status:      invoicing.InvoiceStatusPaid,
		TotalAmount: decimal.NewFromInt(200),
		Items: []invoicing.InvoiceItem{{
			ID: 1, StockID: 1, ProductID: 4, Qty: 2, SellingPrice: decimal.NewFromInt(100), Stock: stock,
		}},
		Payments: []invoicing.Payment{{
			ID: 1, PaidAmount: decimal.NewFromInt(200), PaymentType: invoicing.PaymentTypeCash,
			Status: invoicing.PaymentStatusCleared, CreatedAt: reportNow.AddDate(0, 0, -3),
		}},
		CreatedAt: reportNow.AddDate(0, 0, -3),
	}
}

func newDashboardService(repo *invoiceStub, opts ...DashboardServiceOption) *DashboardService {
	svc := NewDashboardService(repo, nil, opts...)
	svc.clock = func() time.Time { return reportNow }
	return svc
}

func TestDashboardService_Ranges(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		query    DashboardQuery
		wantFrom time.Time
		wantTo   time.Time
	}{
		{"default 30 days", DashboardQuery{}, reportNow.AddDate(0, 0, -30), reportNow},
		{"one year", DashboardQuery{Range: "1y"}, reportNow.AddDate(-1, 0, 0), reportNow},
		{"calendar month", DashboardQuery{Range: "2026-02"},
			time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 23, 59, 59, 999999999, time.UTC)},
		{"explicit bounds", DashboardQuery{Range: "90d", From: "2026-01-05", To: "2026-01-10"},
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 10, 23, 59, 59, 999999999, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &invoiceStub{}
			d, err := newDashboardService(repo).Dashboard(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, d.Period.From)
			assert.Equal(t, tt.wantTo, d.Period.To)
			require.Len(t, repo.filters, 1)
			assert.Equal(t, tt.wantFrom, repo.filters[0].Period.From)
		})
	}
}

func TestDashboardService_InvalidRange(t *testing.T) {
	ctx := context.Background()
	svc := newDashboardService(&invoiceStub{})

	_, err := svc.Dashboard(ctx, DashboardQuery{Range: "last-week"})
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)

	_, err = svc.Dashboard(ctx, DashboardQuery{From: "2026-01-05"})
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)

	_, err = svc.Dashboard(ctx, DashboardQuery{From: "2026-02-05", To: "2026-01-05"})
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)
}

func TestDashboardService_IncludeInactive(t *testing.T) {
	ctx := context.Background()
	repo := &invoiceStub{invoices: []invoicing.Invoice{sampleInvoice(shared.StatusInactive)}}
	svc := newDashboardService(repo)

	hidden, err := svc.Dashboard(ctx, DashboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, hidden.TotalOrders)

	shown, err := svc.Dashboard(ctx, DashboardQuery{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 1, shown.TotalOrders)
	assert.True(t, shown.TotalRevenue.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, shared.IncludeInactive, repo.filters[1].Visibility)
}

func TestDashboardService_Cache(t *testing.T) {
	ctx := context.Background()
	repo := &invoiceStub{invoices: []invoicing.Invoice{sampleInvoice(shared.StatusActive)}}
	cache := &mapCache{entries: map[string]*report.Dashboard{}}
	svc := newDashboardService(repo, WithDashboardCache(cache))

	first, err := svc.Dashboard(ctx, DashboardQuery{Range: "60d"})
	require.NoError(t, err)
	second, err := svc.Dashboard(ctx, DashboardQuery{Range: "60d"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, repo.filters, 1)
	assert.Len(t, cache.entries, 1)
}

func TestDashboardService_Export(t *testing.T) {
	ctx := context.Background()
	repo := &invoiceStub{invoices: []invoicing.Invoice{sampleInvoice(shared.StatusActive)}}

	t.Run("not configured", func(t *testing.T) {
		_, err := newDashboardService(repo).Export(ctx, DashboardQuery{})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("archived", func(t *testing.T) {
		store := storage.NewMemoryObjectStorage()
		out, err := newDashboardService(repo, WithExporter(fakeExporter{}), WithObjectStore(store)).
			Export(ctx, DashboardQuery{Range: "2026-05"})
		require.NoError(t, err)
		assert.Equal(t, "dashboard_20260501_20260531.xlsx", out.Filename)
		assert.Equal(t, "200", string(out.Body))
		assert.True(t, strings.HasPrefix(out.ArchiveKey, "exports/2026/05/20/"))
		archived, ok := store.Get(out.ArchiveKey)
		require.True(t, ok)
		assert.Equal(t, out.Body, archived.Body)
		assert.Equal(t, fakeExporter{}.ContentType(), archived.ContentType)
	})

	t.Run("archive failure keeps the export", func(t *testing.T) {
		store := failingStore{err: errors.New("bucket missing")}
		out, err := newDashboardService(repo, WithExporter(fakeExporter{}), WithObjectStore(store)).
			Export(ctx, DashboardQuery{})
		require.NoError(t, err)
		assert.Empty(t, out.ArchiveKey)
		assert.NotEmpty(t, out.Body)
	})
}
