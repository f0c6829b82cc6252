package pool

import (
	"context"
	"fmt"

	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
)

// deriveForHost ensures the DERIVED_VIRT pool for (parent subscription, host)
// exists once host holds ent against a virt_limit pool. Guests and pools
// without virt_limit derive nothing.
func (e *Engine) deriveForHost(ctx context.Context, u *unitOfWork, parent *pool.Pool, host *consumer.Consumer, ent *entitlement.Entitlement) (*pool.Pool, error) {
	if parent.Type() != pool.TypeNormal || host.IsGuest() {
		return nil, nil
	}
	limit, ok := parent.VirtLimit()
	if !ok {
		return nil, nil
	}

	existing, err := e.pools.FindDerived(ctx, parent.SourceSubscriptionID(), host.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to find derived pool: %w", err)
	}
	if existing != nil && !u.deleted[existing.ID()] {
		return u.adopt(existing), nil
	}

	derived, err := pool.NewDerivedPool(parent, host.UUID(), ent.ID(), limit)
	if err != nil {
		return nil, err
	}
	if err := e.createPool(ctx, u, derived); err != nil {
		return nil, err
	}
	e.logger.Infow("derived pool created",
		"pool_id", derived.ID(),
		"parent_pool_id", parent.ID(),
		"host_uuid", host.UUID(),
	)

	// Guests the host reported before it held the parent still sit on their
	// old host's pool.
	if err := e.migrateGuests(ctx, u, host, host.GuestIDs()); err != nil {
		return nil, err
	}
	return derived, nil
}

// migrateGuests moves the given guests of host off the derived pools of other
// hosts, skipping guests whose latest mapping points elsewhere. A guest whose
// new host has no matching derived pool keeps its entitlements and goes
// through standard auto-attach.
func (e *Engine) migrateGuests(ctx context.Context, u *unitOfWork, host *consumer.Consumer, addedGuests []string) error {
	for _, guestID := range addedGuests {
		mappings, err := e.consumers.ListMappingsForGuest(ctx, host.OwnerID(), guestID)
		if err != nil {
			return fmt.Errorf("failed to list mappings of guest %s: %w", guestID, err)
		}
		if len(mappings) == 0 || mappings[0].HostUUID != host.UUID() {
			continue
		}
		guests, err := e.consumers.FindByVirtUUID(ctx, host.OwnerID(), guestID)
		if err != nil {
			return fmt.Errorf("failed to find guest %s: %w", guestID, err)
		}
		for _, guest := range guests {
			if err := e.migrateGuest(ctx, u, host, guest); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) migrateGuest(ctx context.Context, u *unitOfWork, host, guest *consumer.Consumer) error {
	ents, err := e.entitlements.ListByConsumer(ctx, guest.UUID())
	if err != nil {
		return fmt.Errorf("failed to list entitlements of %s: %w", guest.UUID(), err)
	}

	unmatched := false
	for _, ent := range ents {
		if u.revoked[ent.ID()] {
			continue
		}
		p, err := e.loadPool(ctx, u, ent.PoolID())
		if err != nil {
			return err
		}
		if p.Type() != pool.TypeDerivedVirt || p.RequiresHost() == host.UUID() {
			continue
		}

		target, err := e.hostDerivedPool(ctx, u, host, p.ProductID(), ent.Quantity())
		if err != nil {
			return err
		}
		if target == nil {
			unmatched = true
			continue
		}
		if err := e.revokeEntitlement(ctx, u, ent); err != nil {
			return err
		}
		if _, err := e.bindPool(ctx, u, guest, target, ent.Quantity()); err != nil {
			return err
		}
		e.logger.Infow("guest migrated",
			"guest_uuid", guest.UUID(),
			"from_host", p.RequiresHost(),
			"to_host", host.UUID(),
			"pool_id", target.ID(),
		)
	}

	if unmatched {
		_, err := e.attachStandard(ctx, u, guest)
		return err
	}
	return nil
}

// hostDerivedPool returns host's derived pool for productID that still has
// quantity for the guest, or nil.
func (e *Engine) hostDerivedPool(ctx context.Context, u *unitOfWork, host *consumer.Consumer, productID string, quantity int64) (*pool.Pool, error) {
	pools, err := e.pools.ListDerivedForHost(ctx, host.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to list derived pools of %s: %w", host.UUID(), err)
	}
	now := e.now()
	for _, p := range u.live(pools) {
		if p.ProductID() == productID && p.IsActiveAt(now) && p.EntitlementsAvailable(quantity) {
			return p, nil
		}
	}
	return nil, nil
}
