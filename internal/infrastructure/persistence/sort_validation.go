package persistence

import (
	"fmt"
	"strings"

	"github.com/erp/invoicing/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to every table
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
}

// CatalogSortFields contains allowed sort fields for categories and products
var CatalogSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"title":      true,
}

// InvoiceSortFields contains allowed sort fields for invoices and quotations
var InvoiceSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"total_amount": true,
	"status":       true,
}

// orderBy returns a scope ordering by the whitelisted field of filter.
// The primary key breaks ties so equal timestamps list deterministically.
func orderBy(filter shared.Filter, allowed map[string]bool, defaultField string) func(*gorm.DB) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return func(db *gorm.DB) *gorm.DB {
		db = db.Order(fmt.Sprintf("%s %s", field, dir))
		if field != "id" {
			db = db.Order(fmt.Sprintf("id %s", dir))
		}
		return db
	}
}

// visible returns a scope hiding INACTIVE rows unless v includes them
func visible(v shared.Visibility) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if v == shared.IncludeInactive {
			return db
		}
		return db.Where("status = ?", string(shared.StatusActive))
	}
}

// createdWithin returns a scope restricting created_at to p, when set
func createdWithin(p *shared.Period) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p == nil {
			return db
		}
		return db.Where("created_at >= ? AND created_at <= ?", p.From, p.To)
	}
}
