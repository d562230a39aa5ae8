package shared

import "time"

// BaseEntity provides common fields for reference-data entities keyed by a
// numeric identity
type BaseEntity struct {
	ID        uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uint {
	return e.ID
}

// Touch stamps UpdatedAt, and CreatedAt for entities not yet persisted
func (e *BaseEntity) Touch(now time.Time) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
}
