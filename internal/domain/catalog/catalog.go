// Package catalog holds the external inputs reconciliation works from:
// owners (tenants), products and the subscriptions that grant them.
package catalog

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/orris-inc/poolkeeper/internal/shared/id"
)

// Unlimited marks an unbounded subscription or pool quantity.
const Unlimited int64 = -1

// Product attribute keys.
const (
	AttrVirtLimit    = "virt_limit"
	AttrExpiresAfter = "expires_after"

	// VirtLimitUnlimited is the attribute value for hosts with unlimited guests.
	VirtLimitUnlimited = "unlimited"

	// DefaultExpiresAfterDays applies when expires_after is absent or invalid.
	DefaultExpiresAfterDays = 90
)

// Owner is a tenant. Every pool, consumer and job belongs to one owner.
type Owner struct {
	id          string
	key         string
	displayName string
	createdAt   time.Time
}

func NewOwner(key, displayName string) (*Owner, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrOwnerKeyRequired
	}
	if displayName == "" {
		displayName = key
	}
	return &Owner{
		id:          id.NewOwnerID(),
		key:         key,
		displayName: displayName,
		createdAt:   time.Now().UTC(),
	}, nil
}

func ReconstructOwner(ownerID, key, displayName string, createdAt time.Time) *Owner {
	return &Owner{id: ownerID, key: key, displayName: displayName, createdAt: createdAt}
}

func (o *Owner) ID() string           { return o.id }
func (o *Owner) Key() string          { return o.key }
func (o *Owner) DisplayName() string  { return o.displayName }
func (o *Owner) CreatedAt() time.Time { return o.createdAt }

// Product is a sellable SKU. Its provided products are what consumers install.
type Product struct {
	id                 string
	name               string
	attributes         map[string]string
	providedProductIDs []string
}

func NewProduct(productID, name string, attributes map[string]string, provided []string) (*Product, error) {
	if productID == "" {
		return nil, ErrProductIDRequired
	}
	if attributes == nil {
		attributes = make(map[string]string)
	}
	return &Product{
		id:                 productID,
		name:               name,
		attributes:         maps.Clone(attributes),
		providedProductIDs: slices.Clone(provided),
	}, nil
}

func (p *Product) ID() string                    { return p.id }
func (p *Product) Name() string                  { return p.name }
func (p *Product) Attributes() map[string]string { return maps.Clone(p.attributes) }
func (p *Product) Attribute(key string) string   { return p.attributes[key] }
func (p *Product) ProvidedProductIDs() []string  { return slices.Clone(p.providedProductIDs) }

// VirtLimit reports the guest quantity for derived pools. ok is false when the
// product does not carry a usable virt_limit.
func (p *Product) VirtLimit() (quantity int64, ok bool) {
	return ParseVirtLimit(p.attributes[AttrVirtLimit])
}

// ExpiresAfter is the lifetime of development pools built from this product.
func (p *Product) ExpiresAfter() time.Duration {
	days, err := strconv.Atoi(strings.TrimSpace(p.attributes[AttrExpiresAfter]))
	if err != nil || days <= 0 {
		days = DefaultExpiresAfterDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// ParseVirtLimit parses a virt_limit attribute value.
func ParseVirtLimit(v string) (int64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if strings.EqualFold(v, VirtLimitUnlimited) {
		return Unlimited, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Subscription grants an owner quantity of a product over a validity window.
type Subscription struct {
	id        string
	ownerID   string
	productID string
	quantity  int64
	startDate time.Time
	endDate   time.Time
}

func NewSubscription(ownerID, productID string, quantity int64, startDate, endDate time.Time) (*Subscription, error) {
	if ownerID == "" {
		return nil, ErrOwnerIDRequired
	}
	if productID == "" {
		return nil, ErrProductIDRequired
	}
	if quantity < Unlimited {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if !endDate.After(startDate) {
		return nil, ErrInvalidWindow
	}
	return &Subscription{
		id:        id.NewSubscriptionID(),
		ownerID:   ownerID,
		productID: productID,
		quantity:  quantity,
		startDate: startDate.UTC(),
		endDate:   endDate.UTC(),
	}, nil
}

func ReconstructSubscription(subID, ownerID, productID string, quantity int64, startDate, endDate time.Time) *Subscription {
	return &Subscription{
		id:        subID,
		ownerID:   ownerID,
		productID: productID,
		quantity:  quantity,
		startDate: startDate,
		endDate:   endDate,
	}
}

func (s *Subscription) ID() string           { return s.id }
func (s *Subscription) OwnerID() string      { return s.ownerID }
func (s *Subscription) ProductID() string    { return s.productID }
func (s *Subscription) Quantity() int64      { return s.quantity }
func (s *Subscription) StartDate() time.Time { return s.startDate }
func (s *Subscription) EndDate() time.Time   { return s.endDate }

// IsActiveAt reports whether at falls inside the validity window.
func (s *Subscription) IsActiveAt(at time.Time) bool {
	return !at.Before(s.startDate) && !at.After(s.endDate)
}

// SetQuantity changes the granted quantity; Unlimited is allowed.
func (s *Subscription) SetQuantity(quantity int64) error {
	if quantity < Unlimited {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	s.quantity = quantity
	return nil
}

// SetWindow changes the validity window.
func (s *Subscription) SetWindow(startDate, endDate time.Time) error {
	if !endDate.After(startDate) {
		return ErrInvalidWindow
	}
	s.startDate, s.endDate = startDate.UTC(), endDate.UTC()
	return nil
}
