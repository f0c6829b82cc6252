// Package pool models grants of consumable capacity. A pool is NORMAL when it
// mirrors a subscription, DERIVED_VIRT when it was spawned for the guests of one
// host, and DEVELOPMENT when it is an ephemeral per-consumer allocation.
package pool

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/shared/id"
)

// Type classifies how a pool came to exist.
type Type string

const (
	TypeNormal      Type = "NORMAL"
	TypeDerivedVirt Type = "DERIVED_VIRT"
	TypeDevelopment Type = "DEVELOPMENT"
)

func (t Type) IsValid() bool {
	return t == TypeNormal || t == TypeDerivedVirt || t == TypeDevelopment
}

// Unlimited marks an unbounded quantity.
const Unlimited = catalog.Unlimited

// Attribute keys.
const (
	AttrVirtLimit        = catalog.AttrVirtLimit
	AttrRequiresHost     = "requires_host"
	AttrVirtOnly         = "virt_only"
	AttrPoolDerived      = "pool_derived"
	AttrRequiresConsumer = "requires_consumer"
	AttrDevPool          = "dev_pool"
)

// Pool is the pool aggregate root.
type Pool struct {
	id                   string
	ownerID              string
	productID            string
	providedProductIDs   []string
	poolType             Type
	quantity             int64
	consumed             int64
	attributes           map[string]string
	sourceSubscriptionID string
	sourceEntitlementID  string
	startDate            time.Time
	endDate              time.Time
	createdAt            time.Time
	updatedAt            time.Time
	version              int
}

// NewPool creates a pool with nothing consumed.
func NewPool(
	ownerID, productID string,
	poolType Type,
	quantity int64,
	providedProductIDs []string,
	attributes map[string]string,
	startDate, endDate time.Time,
) (*Pool, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if productID == "" {
		return nil, ErrProductRequired
	}
	if !poolType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, poolType)
	}
	if quantity < Unlimited {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if attributes == nil {
		attributes = make(map[string]string)
	}

	now := time.Now().UTC()
	return &Pool{
		id:                 id.NewPoolID(),
		ownerID:            ownerID,
		productID:          productID,
		providedProductIDs: normalizeProducts(providedProductIDs),
		poolType:           poolType,
		quantity:           quantity,
		attributes:         maps.Clone(attributes),
		startDate:          startDate.UTC(),
		endDate:            endDate.UTC(),
		createdAt:          now,
		updatedAt:          now,
		version:            1,
	}, nil
}

// NewDerivedPool creates the DERIVED_VIRT pool serving the guests of hostUUID,
// sourced from the host's entitlement to parent.
func NewDerivedPool(parent *Pool, hostUUID, sourceEntitlementID string, quantity int64) (*Pool, error) {
	if hostUUID == "" || sourceEntitlementID == "" {
		return nil, ErrDerivedSourceRequired
	}
	attrs := map[string]string{
		AttrRequiresHost: hostUUID,
		AttrVirtOnly:     "true",
		AttrPoolDerived:  "true",
	}
	p, err := NewPool(parent.ownerID, parent.productID, TypeDerivedVirt, quantity,
		parent.providedProductIDs, attrs, parent.startDate, parent.endDate)
	if err != nil {
		return nil, err
	}
	p.sourceSubscriptionID = parent.sourceSubscriptionID
	p.sourceEntitlementID = sourceEntitlementID
	return p, nil
}

// NewDevelopmentPool creates a single-use pool reserved for consumerUUID.
func NewDevelopmentPool(ownerID, productID, consumerUUID string, provided []string, startDate, endDate time.Time) (*Pool, error) {
	if consumerUUID == "" {
		return nil, ErrConsumerRequired
	}
	attrs := map[string]string{
		AttrRequiresConsumer: consumerUUID,
		AttrDevPool:          "true",
	}
	return NewPool(ownerID, productID, TypeDevelopment, 1, provided, attrs, startDate, endDate)
}

// ReconstructPool rebuilds a pool from persistence.
func ReconstructPool(
	poolID, ownerID, productID string,
	providedProductIDs []string,
	poolType Type,
	quantity, consumed int64,
	attributes map[string]string,
	sourceSubscriptionID, sourceEntitlementID string,
	startDate, endDate, createdAt, updatedAt time.Time,
	version int,
) (*Pool, error) {
	if poolID == "" {
		return nil, fmt.Errorf("pool ID cannot be empty")
	}
	if !poolType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, poolType)
	}
	if attributes == nil {
		attributes = make(map[string]string)
	}
	return &Pool{
		id:                   poolID,
		ownerID:              ownerID,
		productID:            productID,
		providedProductIDs:   normalizeProducts(providedProductIDs),
		poolType:             poolType,
		quantity:             quantity,
		consumed:             consumed,
		attributes:           attributes,
		sourceSubscriptionID: sourceSubscriptionID,
		sourceEntitlementID:  sourceEntitlementID,
		startDate:            startDate,
		endDate:              endDate,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
		version:              version,
	}, nil
}

func (p *Pool) ID() string                    { return p.id }
func (p *Pool) OwnerID() string               { return p.ownerID }
func (p *Pool) ProductID() string             { return p.productID }
func (p *Pool) ProvidedProductIDs() []string  { return slices.Clone(p.providedProductIDs) }
func (p *Pool) Type() Type                    { return p.poolType }
func (p *Pool) Quantity() int64               { return p.quantity }
func (p *Pool) Consumed() int64               { return p.consumed }
func (p *Pool) Attributes() map[string]string { return maps.Clone(p.attributes) }
func (p *Pool) Attribute(key string) string   { return p.attributes[key] }
func (p *Pool) SourceSubscriptionID() string  { return p.sourceSubscriptionID }
func (p *Pool) SourceEntitlementID() string   { return p.sourceEntitlementID }
func (p *Pool) StartDate() time.Time          { return p.startDate }
func (p *Pool) EndDate() time.Time            { return p.endDate }
func (p *Pool) CreatedAt() time.Time          { return p.createdAt }
func (p *Pool) UpdatedAt() time.Time          { return p.updatedAt }
func (p *Pool) Version() int                  { return p.version }

// RequiresHost is the host uuid whose guests may use a DERIVED_VIRT pool.
func (p *Pool) RequiresHost() string { return p.attributes[AttrRequiresHost] }

// RequiresConsumer is the only consumer allowed to use a DEVELOPMENT pool.
func (p *Pool) RequiresConsumer() string { return p.attributes[AttrRequiresConsumer] }

// VirtLimit reports the guest quantity carried from the product.
func (p *Pool) VirtLimit() (int64, bool) {
	return catalog.ParseVirtLimit(p.attributes[AttrVirtLimit])
}

func (p *Pool) IsUnlimited() bool { return p.quantity == Unlimited }

// Available is the remaining quantity; Unlimited for unbounded pools.
func (p *Pool) Available() int64 {
	if p.IsUnlimited() {
		return Unlimited
	}
	if p.consumed >= p.quantity {
		return 0
	}
	return p.quantity - p.consumed
}

// EntitlementsAvailable reports whether quantity more can be consumed.
func (p *Pool) EntitlementsAvailable(quantity int64) bool {
	if p.IsUnlimited() {
		return true
	}
	return p.consumed+quantity <= p.quantity
}

// IsOverflowing reports whether more is consumed than the pool grants.
func (p *Pool) IsOverflowing() bool {
	return !p.IsUnlimited() && p.consumed > p.quantity
}

// IsActiveAt reports whether at falls inside the pool's window.
func (p *Pool) IsActiveAt(at time.Time) bool {
	return !at.Before(p.startDate) && !at.After(p.endDate)
}

// Provides reports whether the pool covers productID, either as its own
// product or as a provided product.
func (p *Pool) Provides(productID string) bool {
	return p.productID == productID || slices.Contains(p.providedProductIDs, productID)
}

// Consume records quantity taken by a new entitlement.
func (p *Pool) Consume(quantity int64) error {
	if quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if !p.EntitlementsAvailable(quantity) {
		return ErrPoolExhausted
	}
	p.consumed += quantity
	p.touch()
	return nil
}

// Release returns quantity from a revoked entitlement.
func (p *Pool) Release(quantity int64) {
	p.consumed -= quantity
	if p.consumed < 0 {
		p.consumed = 0
	}
	p.touch()
}

// AdjustQuantity changes a bounded quantity by delta, never below zero.
// Unlimited pools are unaffected.
func (p *Pool) AdjustQuantity(delta int64) {
	if p.IsUnlimited() {
		return
	}
	p.quantity += delta
	if p.quantity < 0 {
		p.quantity = 0
	}
	p.touch()
}

// SyncFrom copies reconciliable fields and reports whether anything changed.
func (p *Pool) SyncFrom(quantity int64, provided []string, attributes map[string]string, startDate, endDate time.Time) bool {
	provided = normalizeProducts(provided)
	startDate, endDate = startDate.UTC(), endDate.UTC()
	if attributes == nil {
		attributes = make(map[string]string)
	}

	if p.quantity == quantity &&
		slices.Equal(p.providedProductIDs, provided) &&
		maps.Equal(p.attributes, attributes) &&
		p.startDate.Equal(startDate) &&
		p.endDate.Equal(endDate) {
		return false
	}
	p.quantity = quantity
	p.providedProductIDs = provided
	p.attributes = maps.Clone(attributes)
	p.startDate = startDate
	p.endDate = endDate
	p.touch()
	return true
}

// SetSourceSubscriptionID links a NORMAL pool to the subscription it mirrors.
func (p *Pool) SetSourceSubscriptionID(subscriptionID string) {
	p.sourceSubscriptionID = subscriptionID
}

// Resource points a DERIVED_VIRT pool at another live host entitlement.
func (p *Pool) Resource(entitlementID string) error {
	if p.poolType != TypeDerivedVirt {
		return fmt.Errorf("%w: only derived pools have a source entitlement", ErrInvalidType)
	}
	if entitlementID == "" {
		return ErrDerivedSourceRequired
	}
	p.sourceEntitlementID = entitlementID
	p.touch()
	return nil
}

// IncrementVersion is called by the repository after a successful optimistic update.
func (p *Pool) IncrementVersion() {
	p.version++
}

func (p *Pool) touch() {
	p.updatedAt = time.Now().UTC()
}

func normalizeProducts(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
