package pool

import (
	"context"
	"time"
)

// Repository persists pools. List methods order by creation time then id.
type Repository interface {
	Create(ctx context.Context, p *Pool) error

	// Update writes p using optimistic locking on its version.
	Update(ctx context.Context, p *Pool) error

	Delete(ctx context.Context, poolID string) error

	// GetByID returns ErrPoolNotFound for an unknown id.
	GetByID(ctx context.Context, poolID string) (*Pool, error)

	ListByOwner(ctx context.Context, ownerID string) ([]*Pool, error)

	ListByOwnerAndType(ctx context.Context, ownerID string, poolType Type) ([]*Pool, error)

	// FindBySourceEntitlement returns the DERIVED_VIRT pool sourced from
	// entitlementID, or nil.
	FindBySourceEntitlement(ctx context.Context, entitlementID string) (*Pool, error)

	// FindDerived returns the DERIVED_VIRT pool of (subscription, host), or nil.
	FindDerived(ctx context.Context, subscriptionID, hostUUID string) (*Pool, error)

	// ListDerivedForHost returns every DERIVED_VIRT pool serving hostUUID's guests.
	ListDerivedForHost(ctx context.Context, hostUUID string) ([]*Pool, error)

	// ListDevelopmentForConsumer returns the DEVELOPMENT pools reserved for consumerUUID.
	ListDevelopmentForConsumer(ctx context.Context, consumerUUID string) ([]*Pool, error)

	// ListExpiredDevelopment returns DEVELOPMENT pools of every owner whose end date is before at.
	ListExpiredDevelopment(ctx context.Context, at time.Time) ([]*Pool, error)
}
