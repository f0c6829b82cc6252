package pool

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
)

// revokeEntitlement deletes ent, returns its quantity to the pool and settles
// the DERIVED_VIRT pool the entitlement sourced, if any.
func (e *Engine) revokeEntitlement(ctx context.Context, u *unitOfWork, ent *entitlement.Entitlement) error {
	if u.revoked[ent.ID()] {
		return nil
	}
	if err := e.entitlements.Delete(ctx, ent.ID()); err != nil {
		return fmt.Errorf("failed to delete entitlement %s: %w", ent.ID(), err)
	}
	u.entitlementRevoked(ent)

	if !u.deleted[ent.PoolID()] {
		p, err := e.loadPool(ctx, u, ent.PoolID())
		switch {
		case errors.Is(err, pool.ErrPoolNotFound):
		case err != nil:
			return err
		default:
			p.Release(ent.Quantity())
			if err := e.savePool(ctx, u, p); err != nil {
				return err
			}
		}
	}

	derived, err := e.pools.FindBySourceEntitlement(ctx, ent.ID())
	if err != nil {
		return fmt.Errorf("failed to find pool derived from %s: %w", ent.ID(), err)
	}
	if derived == nil || u.deleted[derived.ID()] {
		return nil
	}
	return e.resourceOrDelete(ctx, u, u.adopt(derived), ent.ConsumerUUID())
}

// resourceOrDelete points a derived pool at another entitlement the host holds
// for the same subscription, or deletes the pool when none is left.
func (e *Engine) resourceOrDelete(ctx context.Context, u *unitOfWork, derived *pool.Pool, hostUUID string) error {
	replacement, err := e.findHostSource(ctx, u, hostUUID, derived.SourceSubscriptionID(), derived.SourceEntitlementID())
	if err != nil {
		return err
	}
	if replacement == nil {
		return e.deletePool(ctx, u, derived)
	}
	if err := derived.Resource(replacement.ID()); err != nil {
		return err
	}
	e.logger.Infow("derived pool re-sourced",
		"pool_id", derived.ID(),
		"host_uuid", hostUUID,
		"entitlement_id", replacement.ID(),
	)
	return e.savePool(ctx, u, derived)
}

// findHostSource returns the host's oldest live entitlement to a NORMAL pool of
// subscriptionID, skipping exclude.
func (e *Engine) findHostSource(ctx context.Context, u *unitOfWork, hostUUID, subscriptionID, exclude string) (*entitlement.Entitlement, error) {
	if subscriptionID == "" {
		return nil, nil
	}
	ents, err := e.entitlements.ListByConsumer(ctx, hostUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements of %s: %w", hostUUID, err)
	}
	for _, ent := range ents {
		if ent.ID() == exclude || u.revoked[ent.ID()] || u.deleted[ent.PoolID()] {
			continue
		}
		p, err := e.loadPool(ctx, u, ent.PoolID())
		if errors.Is(err, pool.ErrPoolNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if p.Type() == pool.TypeNormal && p.SourceSubscriptionID() == subscriptionID {
			return ent, nil
		}
	}
	return nil, nil
}

// deletePool revokes every entitlement of p, cascading into pools they
// sourced, and then deletes p.
func (e *Engine) deletePool(ctx context.Context, u *unitOfWork, p *pool.Pool) error {
	if u.deleted[p.ID()] {
		return nil
	}
	u.poolDeleting(p.ID())

	ents, err := e.entitlements.ListByPool(ctx, p.ID())
	if err != nil {
		return fmt.Errorf("failed to list entitlements of pool %s: %w", p.ID(), err)
	}
	for _, ent := range ents {
		if err := e.revokeEntitlement(ctx, u, ent); err != nil {
			return err
		}
	}
	if err := e.pools.Delete(ctx, p.ID()); err != nil {
		return fmt.Errorf("failed to delete pool %s: %w", p.ID(), err)
	}
	u.poolDeleted(p.ID())
	e.logger.Infow("pool deleted",
		"pool_id", p.ID(),
		"type", p.Type(),
		"revoked", len(ents),
	)
	return nil
}

// trimOverflow revokes the newest entitlements of p until it fits its quantity.
func (e *Engine) trimOverflow(ctx context.Context, u *unitOfWork, p *pool.Pool) error {
	if !p.IsOverflowing() {
		return nil
	}
	ents, err := e.entitlements.ListByPool(ctx, p.ID())
	if err != nil {
		return fmt.Errorf("failed to list entitlements of pool %s: %w", p.ID(), err)
	}
	for _, ent := range slices.Backward(ents) {
		if !p.IsOverflowing() {
			break
		}
		if err := e.revokeEntitlement(ctx, u, ent); err != nil {
			return err
		}
	}
	return nil
}
