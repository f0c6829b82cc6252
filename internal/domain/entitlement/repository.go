package entitlement

import "context"

// Repository defines the interface for entitlement persistence operations.
// List methods order by creation time then id, oldest first.
type Repository interface {
	Create(ctx context.Context, e *Entitlement) error

	// Delete returns ErrEntitlementNotFound when nothing was deleted.
	Delete(ctx context.Context, entitlementID string) error

	// GetByID returns ErrEntitlementNotFound for an unknown id.
	GetByID(ctx context.Context, entitlementID string) (*Entitlement, error)

	ListByConsumer(ctx context.Context, consumerUUID string) ([]*Entitlement, error)

	ListByPool(ctx context.Context, poolID string) ([]*Entitlement, error)

	ListByConsumerAndPool(ctx context.Context, consumerUUID, poolID string) ([]*Entitlement, error)
}
