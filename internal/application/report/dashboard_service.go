package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/report"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DashboardCache stores computed dashboards. Get returns nil on a miss.
type DashboardCache interface {
	Get(ctx context.Context, key string) (*report.Dashboard, error)
	Set(ctx context.Context, key string, dashboard *report.Dashboard) error
}

// DashboardExporter renders a dashboard as a spreadsheet
type DashboardExporter interface {
	Export(dashboard *report.Dashboard) ([]byte, error)
	ContentType() string
	Extension() string
}

// ObjectStore archives exported files
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// DashboardQuery selects the dashboard window. From and To (yyyy-mm-dd) take
// precedence over Range when both are set.
type DashboardQuery struct {
	Range           string `form:"dateRange"`
	From            string `form:"from"`
	To              string `form:"to"`
	IncludeInactive bool   `form:"includeInactive"`
}

// Export is a rendered dashboard file
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
	ArchiveKey  string
}

// DashboardService builds dashboards from invoices
type DashboardService struct {
	invoiceRepo invoicing.InvoiceRepository
	cache       DashboardCache
	exporter    DashboardExporter
	store       ObjectStore
	logger      *zap.Logger
	clock       func() time.Time
}

// DashboardServiceOption configures a DashboardService
type DashboardServiceOption func(*DashboardService)

// WithDashboardCache enables result caching
func WithDashboardCache(c DashboardCache) DashboardServiceOption {
	return func(s *DashboardService) { s.cache = c }
}

// WithExporter sets the spreadsheet renderer used by Export
func WithExporter(e DashboardExporter) DashboardServiceOption {
	return func(s *DashboardService) { s.exporter = e }
}

// WithObjectStore archives every export
func WithObjectStore(store ObjectStore) DashboardServiceOption {
	return func(s *DashboardService) { s.store = store }
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(invoiceRepo invoicing.InvoiceRepository, logger *zap.Logger, opts ...DashboardServiceOption) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DashboardService{
		invoiceRepo: invoiceRepo,
		logger:      logger,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard aggregates the invoices created in the selected window
func (s *DashboardService) Dashboard(ctx context.Context, q DashboardQuery) (*report.Dashboard, error) {
	query, err := s.resolve(q)
	if err != nil {
		return nil, err
	}

	key := cacheKey(query)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Dashboard cache read failed", zap.String("key", key), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	filter := shared.DefaultFilter().WithPeriod(query.Period)
	filter.Visibility = query.Visibility
	filter.OrderDir = "asc"
	invoices, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	dashboard := report.Aggregate(invoices, query)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, dashboard); err != nil {
			s.logger.Warn("Dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return dashboard, nil
}

// Export renders the dashboard of q and archives it when an object store is set
func (s *DashboardService) Export(ctx context.Context, q DashboardQuery) (*Export, error) {
	if s.exporter == nil {
		return nil, shared.ErrInvalidState.WithMessage("Dashboard export is not configured")
	}
	dashboard, err := s.Dashboard(ctx, q)
	if err != nil {
		return nil, err
	}
	body, err := s.exporter.Export(dashboard)
	if err != nil {
		return nil, fmt.Errorf("failed to render dashboard export: %w", err)
	}

	out := &Export{
		Filename: fmt.Sprintf("dashboard_%s_%s.%s",
			dashboard.Period.From.Format("20060102"),
			dashboard.Period.To.Format("20060102"),
			s.exporter.Extension()),
		ContentType: s.exporter.ContentType(),
		Body:        body,
	}
	if s.store != nil {
		key := fmt.Sprintf("exports/%s/%s-%s", s.clock().UTC().Format("2006/01/02"), uuid.NewString(), out.Filename)
		if err := s.store.Put(ctx, key, out.ContentType, body); err != nil {
			s.logger.Warn("Failed to archive dashboard export", zap.String("key", key), zap.Error(err))
		} else {
			out.ArchiveKey = key
		}
	}
	return out, nil
}

func (s *DashboardService) resolve(q DashboardQuery) (report.Query, error) {
	visibility := shared.ActiveOnly
	if q.IncludeInactive {
		visibility = shared.IncludeInactive
	}
	now := s.clock().UTC()

	from, to := strings.TrimSpace(q.From), strings.TrimSpace(q.To)
	if from != "" || to != "" {
		if from == "" || to == "" {
			return report.Query{}, shared.ErrInvalidPeriod.WithDetails("from and to must be given together")
		}
		start, err := shared.ParseDateFilter(from, now)
		if err != nil {
			return report.Query{}, err
		}
		end, err := shared.ParseDateFilter(to, now)
		if err != nil {
			return report.Query{}, err
		}
		period, err := shared.NewPeriod(start.From, end.To)
		if err != nil {
			return report.Query{}, err
		}
		return report.Query{Period: period, Visibility: visibility}, nil
	}

	period, err := shared.ParseRange(strings.TrimSpace(q.Range), now)
	if err != nil {
		return report.Query{}, err
	}
	return report.Query{Period: period, Visibility: visibility}, nil
}

// cacheKey truncates relative windows to the minute so that repeated reads share a key
func cacheKey(q report.Query) string {
	return fmt.Sprintf("dashboard:%d:%d:%d",
		q.Period.From.Truncate(time.Minute).Unix(),
		q.Period.To.Truncate(time.Minute).Unix(),
		q.Visibility)
}
