package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
)

// OperationReconcile names reconcile passes in reports and change events.
const OperationReconcile = "reconcile"

// Reconcile mirrors the owner's active subscriptions into NORMAL pools and
// brings DERIVED_VIRT pools in line with the host entitlements they serve.
// A second pass over unchanged inputs writes nothing.
func (e *Engine) Reconcile(ctx context.Context, ownerKey string, lazy bool) (*Report, error) {
	if ownerKey == "" {
		return nil, sharedErrors.NewInvalidArgumentError("owner key is required")
	}
	owner, err := e.ownerByKey(ctx, ownerKey)
	if err != nil {
		return nil, translateError(err)
	}

	u, err := e.withOwner(ctx, owner.ID(), OperationReconcile, func(ctx context.Context, u *unitOfWork) error {
		if err := e.syncNormalPools(ctx, u, owner.ID()); err != nil {
			return err
		}
		return e.syncDerivedPools(ctx, u, owner.ID())
	})
	if err != nil {
		e.logger.Errorw("reconcile failed", "owner_key", ownerKey, "error", err)
		return nil, translateError(err)
	}

	report := u.report
	report.Lazy = lazy
	if lazy {
		report.AffectedConsumers = nil
	}
	e.logger.Infow("reconcile finished",
		"owner_key", ownerKey,
		"created_pools", len(report.CreatedPools),
		"updated_pools", len(report.UpdatedPools),
		"deleted_pools", len(report.DeletedPools),
		"revoked_entitlements", len(report.RevokedEntitlements),
	)
	return &report, nil
}

func (e *Engine) syncNormalPools(ctx context.Context, u *unitOfWork, ownerID string) error {
	subs, err := e.subscriptions.ListSubscriptions(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}
	existing, err := e.pools.ListByOwnerAndType(ctx, ownerID, pool.TypeNormal)
	if err != nil {
		return fmt.Errorf("failed to list pools: %w", err)
	}

	bySubscription := make(map[string]*pool.Pool, len(existing))
	for _, p := range u.live(existing) {
		bySubscription[p.SourceSubscriptionID()] = p
	}

	now := e.now()
	seen := make(map[string]bool, len(subs))
	for _, sub := range subs {
		if !sub.IsActiveAt(now) {
			continue
		}
		product, err := e.products.GetProduct(ctx, sub.ProductID())
		if err != nil {
			return fmt.Errorf("subscription %s: %w", sub.ID(), err)
		}
		seen[sub.ID()] = true

		if p, ok := bySubscription[sub.ID()]; ok {
			if err := e.syncNormalPool(ctx, u, p, sub, product); err != nil {
				return err
			}
			continue
		}

		p, err := pool.NewPool(ownerID, product.ID(), pool.TypeNormal, sub.Quantity(),
			product.ProvidedProductIDs(), product.Attributes(), sub.StartDate(), sub.EndDate())
		if err != nil {
			return fmt.Errorf("failed to build pool for subscription %s: %w", sub.ID(), err)
		}
		p.SetSourceSubscriptionID(sub.ID())
		if err := e.createPool(ctx, u, p); err != nil {
			return err
		}
	}

	for _, p := range existing {
		if seen[p.SourceSubscriptionID()] || u.deleted[p.ID()] {
			continue
		}
		if err := e.deletePool(ctx, u, u.adopt(p)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) syncNormalPool(ctx context.Context, u *unitOfWork, p *pool.Pool, sub *catalog.Subscription, product *catalog.Product) error {
	if !p.SyncFrom(sub.Quantity(), product.ProvidedProductIDs(), product.Attributes(), sub.StartDate(), sub.EndDate()) {
		return nil
	}
	if err := e.savePool(ctx, u, p); err != nil {
		return err
	}
	return e.trimOverflow(ctx, u, p)
}

// syncDerivedPools drops derived pools that lost their source, re-sizes the
// rest from their parent, derives pools for host entitlements lacking one and
// pulls each host's current guests onto its derived pool.
func (e *Engine) syncDerivedPools(ctx context.Context, u *unitOfWork, ownerID string) error {
	derived, err := e.pools.ListByOwnerAndType(ctx, ownerID, pool.TypeDerivedVirt)
	if err != nil {
		return fmt.Errorf("failed to list derived pools: %w", err)
	}
	for _, d := range u.live(derived) {
		if u.deleted[d.ID()] {
			continue
		}
		if err := e.syncDerivedPool(ctx, u, d); err != nil {
			return err
		}
	}

	normal, err := e.pools.ListByOwnerAndType(ctx, ownerID, pool.TypeNormal)
	if err != nil {
		return fmt.Errorf("failed to list pools: %w", err)
	}
	migrated := make(map[string]bool)
	for _, parent := range u.live(normal) {
		if _, ok := parent.VirtLimit(); !ok {
			continue
		}
		ents, err := e.entitlements.ListByPool(ctx, parent.ID())
		if err != nil {
			return fmt.Errorf("failed to list entitlements of pool %s: %w", parent.ID(), err)
		}
		for _, ent := range ents {
			if u.revoked[ent.ID()] {
				continue
			}
			host, err := e.consumers.GetConsumer(ctx, ent.ConsumerUUID())
			if err != nil {
				return fmt.Errorf("failed to load host %s: %w", ent.ConsumerUUID(), err)
			}
			d, err := e.deriveForHost(ctx, u, parent, host, ent)
			if err != nil {
				return err
			}
			if d == nil || migrated[host.UUID()] {
				continue
			}
			migrated[host.UUID()] = true
			if err := e.migrateGuests(ctx, u, host, host.GuestIDs()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) syncDerivedPool(ctx context.Context, u *unitOfWork, d *pool.Pool) error {
	source, err := e.entitlements.GetByID(ctx, d.SourceEntitlementID())
	if err != nil && !errors.Is(err, entitlement.ErrEntitlementNotFound) {
		return fmt.Errorf("failed to load source of pool %s: %w", d.ID(), err)
	}
	if source == nil || u.revoked[source.ID()] {
		return e.resourceOrDelete(ctx, u, d, d.RequiresHost())
	}

	parent, err := e.loadPool(ctx, u, source.PoolID())
	if errors.Is(err, pool.ErrPoolNotFound) {
		return e.deletePool(ctx, u, d)
	}
	if err != nil {
		return err
	}
	limit, ok := parent.VirtLimit()
	if !ok {
		return e.deletePool(ctx, u, d)
	}
	if !d.SyncFrom(limit, parent.ProvidedProductIDs(), d.Attributes(), parent.StartDate(), parent.EndDate()) {
		return nil
	}
	if err := e.savePool(ctx, u, d); err != nil {
		return err
	}
	return e.trimOverflow(ctx, u, d)
}
