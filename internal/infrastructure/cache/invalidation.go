package cache

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"go.uber.org/zap"
)

// DashboardKeyPrefix is the prefix shared by all dashboard cache keys
const DashboardKeyPrefix = "dashboard:"

// PrefixInvalidator removes cached entries by key prefix
type PrefixInvalidator interface {
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// DashboardInvalidator drops cached dashboards whenever invoice figures change.
// It is registered on the event bus.
type DashboardInvalidator struct {
	cache  PrefixInvalidator
	logger *zap.Logger
}

// NewDashboardInvalidator creates a new DashboardInvalidator
func NewDashboardInvalidator(cache PrefixInvalidator, logger *zap.Logger) *DashboardInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardInvalidator{cache: cache, logger: logger}
}

// Handle invalidates all dashboard keys
func (h *DashboardInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.InvalidatePrefix(ctx, DashboardKeyPrefix); err != nil {
		return err
	}
	h.logger.Debug("Dashboard cache invalidated",
		zap.String("event_type", event.EventType()),
		zap.String("invoice_id", event.AggregateID()),
	)
	return nil
}

// EventTypes implements shared.EventHandler
func (h *DashboardInvalidator) EventTypes() []string {
	return []string{
		invoicing.EventTypeInvoiceCreated,
		invoicing.EventTypePaymentRecorded,
		invoicing.EventTypeChequeStatusChanged,
		invoicing.EventTypeReturnProcessed,
	}
}
