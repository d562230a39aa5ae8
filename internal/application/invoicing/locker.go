package invoicing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/shared"
)

// Locker serialises mutations of one invoice across server replicas
type Locker interface {
	// Acquire blocks until key is held or ctx ends; release must always be called
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// NoopLocker grants every lock immediately. Row locks inside the transaction
// still serialise writers of a single database.
type NoopLocker struct{}

// Acquire implements Locker
func (NoopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// IDGenerator produces invoice ids unique against exists
type IDGenerator interface {
	Generate(ctx context.Context, exists shared.ExistsFunc) (string, error)
}

func invoiceLockKey(invoiceID string) string {
	return "invoice:" + invoiceID
}
