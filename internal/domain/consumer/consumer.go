// Package consumer models systems that hold entitlements, and the host to guest
// topology hypervisors report.
package consumer

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type of consumer.
type Type string

const (
	TypeSystem     Type = "system"
	TypeHypervisor Type = "hypervisor"
	TypePerson     Type = "person"
	TypeDomain     Type = "domain"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeSystem, TypeHypervisor, TypePerson, TypeDomain:
		return true
	}
	return false
}

// Fact keys with meaning to pool logic.
const (
	FactVirtUUID    = "virt.uuid"
	FactVirtIsGuest = "virt.is_guest"
	FactDevSKU      = "dev_sku"
)

// Consumer is the consumer aggregate root.
type Consumer struct {
	uuid              string
	ownerID           string
	name              string
	consumerType      Type
	facts             map[string]string
	installedProducts []string
	guestIDs          []string
	createdAt         time.Time
	updatedAt         time.Time
	version           int
}

// NewConsumer registers a consumer with a fresh uuid.
func NewConsumer(ownerID, name string, consumerType Type, facts map[string]string, installed []string) (*Consumer, error) {
	if ownerID == "" {
		return nil, ErrOwnerIDRequired
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if consumerType == "" {
		consumerType = TypeSystem
	}
	if !consumerType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, consumerType)
	}
	if facts == nil {
		facts = make(map[string]string)
	}

	now := time.Now().UTC()
	return &Consumer{
		uuid:              uuid.NewString(),
		ownerID:           ownerID,
		name:              name,
		consumerType:      consumerType,
		facts:             maps.Clone(facts),
		installedProducts: normalizeSet(installed),
		createdAt:         now,
		updatedAt:         now,
		version:           1,
	}, nil
}

// ReconstructConsumer rebuilds a consumer from persistence.
func ReconstructConsumer(
	consumerUUID, ownerID, name string,
	consumerType Type,
	facts map[string]string,
	installedProducts, guestIDs []string,
	createdAt, updatedAt time.Time,
	version int,
) (*Consumer, error) {
	if _, err := uuid.Parse(consumerUUID); err != nil {
		return nil, fmt.Errorf("invalid consumer uuid %q: %w", consumerUUID, err)
	}
	if facts == nil {
		facts = make(map[string]string)
	}
	return &Consumer{
		uuid:              consumerUUID,
		ownerID:           ownerID,
		name:              name,
		consumerType:      consumerType,
		facts:             facts,
		installedProducts: installedProducts,
		guestIDs:          guestIDs,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
		version:           version,
	}, nil
}

func (c *Consumer) UUID() string                { return c.uuid }
func (c *Consumer) OwnerID() string             { return c.ownerID }
func (c *Consumer) Name() string                { return c.name }
func (c *Consumer) Type() Type                  { return c.consumerType }
func (c *Consumer) Facts() map[string]string    { return maps.Clone(c.facts) }
func (c *Consumer) Fact(key string) string      { return c.facts[key] }
func (c *Consumer) InstalledProducts() []string { return slices.Clone(c.installedProducts) }
func (c *Consumer) GuestIDs() []string          { return slices.Clone(c.guestIDs) }
func (c *Consumer) CreatedAt() time.Time        { return c.createdAt }
func (c *Consumer) UpdatedAt() time.Time        { return c.updatedAt }
func (c *Consumer) Version() int                { return c.version }

// VirtUUID is the id hosts use to report this consumer as a guest.
func (c *Consumer) VirtUUID() string {
	if v := strings.TrimSpace(c.facts[FactVirtUUID]); v != "" {
		return v
	}
	return c.uuid
}

// IsGuest reports whether the consumer declared itself a virtual guest.
// Guests never spawn derived pools.
func (c *Consumer) IsGuest() bool {
	return strings.EqualFold(c.facts[FactVirtIsGuest], "true")
}

// DevSKU is the development product requested by the consumer, if any.
func (c *Consumer) DevSKU() string {
	return strings.TrimSpace(c.facts[FactDevSKU])
}

// SetFacts replaces the fact map.
func (c *Consumer) SetFacts(facts map[string]string) {
	if facts == nil {
		facts = make(map[string]string)
	}
	c.facts = maps.Clone(facts)
	c.touch()
}

// SetInstalledProducts replaces the installed product set.
func (c *Consumer) SetInstalledProducts(products []string) {
	c.installedProducts = normalizeSet(products)
	c.touch()
}

// SetGuestIDs replaces the reported guest list, keeping report order and
// dropping duplicates, and returns what was added and removed.
func (c *Consumer) SetGuestIDs(guestIDs []string) (added, removed []string) {
	next := dedupeOrdered(guestIDs)
	added, removed = DiffGuestIDs(c.guestIDs, next)
	c.guestIDs = next
	c.touch()
	return added, removed
}

// HasGuest reports whether guestID is currently in the guest list.
func (c *Consumer) HasGuest(guestID string) bool {
	return slices.Contains(c.guestIDs, guestID)
}

// IncrementVersion is called by the repository after a successful update.
func (c *Consumer) IncrementVersion() {
	c.version++
}

func (c *Consumer) touch() {
	c.updatedAt = time.Now().UTC()
}

// DiffGuestIDs returns ids present only in next (added) and only in prev (removed),
// each in the order of its source list.
func DiffGuestIDs(prev, next []string) (added, removed []string) {
	for _, g := range next {
		if !slices.Contains(prev, g) {
			added = append(added, g)
		}
	}
	for _, g := range prev {
		if !slices.Contains(next, g) {
			removed = append(removed, g)
		}
	}
	return added, removed
}

func dedupeOrdered(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func normalizeSet(ids []string) []string {
	out := dedupeOrdered(ids)
	slices.Sort(out)
	return out
}
