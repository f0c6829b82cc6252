package consumer

import (
	"context"
	"time"
)

// Repository persists consumers and their guest mappings.
type Repository interface {
	Create(ctx context.Context, c *Consumer) error

	// Update writes c and applies the guest mapping diff for a host in the same call.
	Update(ctx context.Context, c *Consumer, addedGuests, removedGuests []string, at time.Time) error

	// GetConsumer returns ErrConsumerNotFound for an unknown uuid.
	GetConsumer(ctx context.Context, consumerUUID string) (*Consumer, error)

	ListByOwner(ctx context.Context, ownerID string) ([]*Consumer, error)

	// FindByVirtUUID returns the owner's consumers identified by guestID.
	FindByVirtUUID(ctx context.Context, ownerID, guestID string) ([]*Consumer, error)

	// GetGuestIDs returns the guest list a host last reported.
	GetGuestIDs(ctx context.Context, hostUUID string) ([]string, error)

	// GetInstalledProducts returns a consumer's installed product ids.
	GetInstalledProducts(ctx context.Context, consumerUUID string) ([]string, error)

	// ListMappingsForGuest returns the hosts reporting guestID, most recent first.
	ListMappingsForGuest(ctx context.Context, ownerID, guestID string) ([]GuestMapping, error)
}
