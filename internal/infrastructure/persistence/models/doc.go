// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by reference data
// - partner.go: customers
// - catalog.go: categories and products
// - inventory.go: stock rows
// - invoicing.go: invoices, items, payment history, cheques and returns
// - quotation.go: quotations and their items
package models
