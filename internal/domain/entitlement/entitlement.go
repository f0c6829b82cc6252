// Package entitlement models a consumer's claim against a pool. Entitlements
// are never modified after creation; a change is a revoke followed by a new grant.
package entitlement

import (
	"fmt"
	"time"

	"github.com/orris-inc/poolkeeper/internal/shared/id"
)

// Entitlement is the entitlement aggregate root.
type Entitlement struct {
	id           string
	ownerID      string
	consumerUUID string
	poolID       string
	quantity     int64
	createdAt    time.Time
}

// NewEntitlement creates a new entitlement of quantity from poolID.
func NewEntitlement(ownerID, consumerUUID, poolID string, quantity int64) (*Entitlement, error) {
	if ownerID == "" {
		return nil, ErrOwnerIDRequired
	}
	if consumerUUID == "" {
		return nil, ErrConsumerRequired
	}
	if poolID == "" {
		return nil, ErrPoolIDRequired
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	return &Entitlement{
		id:           id.NewEntitlementID(),
		ownerID:      ownerID,
		consumerUUID: consumerUUID,
		poolID:       poolID,
		quantity:     quantity,
		createdAt:    time.Now().UTC(),
	}, nil
}

// ReconstructEntitlement reconstructs an entitlement from persistence
func ReconstructEntitlement(entitlementID, ownerID, consumerUUID, poolID string, quantity int64, createdAt time.Time) (*Entitlement, error) {
	if entitlementID == "" {
		return nil, fmt.Errorf("entitlement ID cannot be empty")
	}
	return &Entitlement{
		id:           entitlementID,
		ownerID:      ownerID,
		consumerUUID: consumerUUID,
		poolID:       poolID,
		quantity:     quantity,
		createdAt:    createdAt,
	}, nil
}

func (e *Entitlement) ID() string           { return e.id }
func (e *Entitlement) OwnerID() string      { return e.ownerID }
func (e *Entitlement) ConsumerUUID() string { return e.consumerUUID }
func (e *Entitlement) PoolID() string       { return e.poolID }
func (e *Entitlement) Quantity() int64      { return e.quantity }
func (e *Entitlement) CreatedAt() time.Time { return e.createdAt }
