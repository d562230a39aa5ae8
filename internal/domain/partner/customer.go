// Package partner holds the customer reference data consumed by invoicing.
package partner

import (
	"context"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
)

// Customer errors
var (
	ErrCustomerNotFound = shared.NewNotFoundError("CUSTOMER_NOT_FOUND", "Customer not found")
	ErrDuplicateEmail   = shared.ErrAlreadyExists.WithMessage("A customer with this email already exists")
)

// Customer is a buyer that owns invoices and quotations
type Customer struct {
	shared.BaseEntity
	Name    string
	Email   string
	Phone   string
	Address string
	Status  shared.RecordStatus
}

// CustomerDetails carries the editable customer fields
type CustomerDetails struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (d CustomerDetails) normalized() CustomerDetails {
	return CustomerDetails{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.ToLower(strings.TrimSpace(d.Email)),
		Phone:   strings.TrimSpace(d.Phone),
		Address: strings.TrimSpace(d.Address),
	}
}

func (d CustomerDetails) validate() error {
	var v shared.ValidationErrors
	v.Check(d.Name == "", "Customer name is required.")
	v.Check(d.Email != "" && !strings.Contains(d.Email, "@"), "Customer email is not a valid address.")
	return v.Err()
}

// NewCustomer creates an active customer
func NewCustomer(details CustomerDetails, now time.Time) (*Customer, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}
	c := &Customer{
		Name:    details.Name,
		Email:   details.Email,
		Phone:   details.Phone,
		Address: details.Address,
		Status:  shared.StatusActive,
	}
	c.Touch(now)
	return c, nil
}

// Update replaces the editable fields
func (c *Customer) Update(details CustomerDetails, now time.Time) error {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}
	c.Name = details.Name
	c.Email = details.Email
	c.Phone = details.Phone
	c.Address = details.Address
	c.Touch(now)
	return nil
}

// Deactivate soft-deletes the customer
func (c *Customer) Deactivate(now time.Time) {
	c.Status = shared.StatusInactive
	c.Touch(now)
}

// IsActive reports whether invoices may be raised against the customer
func (c *Customer) IsActive() bool {
	return c.Status.IsActive()
}

// CustomerRepository is the persistence port for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uint) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
	Save(ctx context.Context, customer *Customer) error
}
