package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
)

const (
	OperationBind   = "bind"
	OperationUnbind = "unbind"
)

// Bind grants consumerUUID quantity from poolID.
func (e *Engine) Bind(ctx context.Context, consumerUUID, poolID string, quantity int64) (*entitlement.Entitlement, error) {
	if quantity < 1 {
		return nil, sharedErrors.NewInvalidArgumentError("quantity must be at least 1")
	}
	c, err := e.consumers.GetConsumer(ctx, consumerUUID)
	if err != nil {
		return nil, translateError(err)
	}

	var granted *entitlement.Entitlement
	_, err = e.withOwner(ctx, c.OwnerID(), OperationBind, func(ctx context.Context, u *unitOfWork) error {
		c, err := e.consumers.GetConsumer(ctx, consumerUUID)
		if err != nil {
			return err
		}
		p, err := e.loadPool(ctx, u, poolID)
		if err != nil {
			return err
		}
		granted, err = e.bindPool(ctx, u, c, p, quantity)
		return err
	})
	if err != nil {
		e.logger.Warnw("bind failed",
			"consumer_uuid", consumerUUID,
			"pool_id", poolID,
			"error", err,
		)
		return nil, translateError(err)
	}
	return granted, nil
}

// bindPool checks eligibility, consumes quantity, records the entitlement and
// derives the host's guest pool when p carries virt_limit.
func (e *Engine) bindPool(ctx context.Context, u *unitOfWork, c *consumer.Consumer, p *pool.Pool, quantity int64) (*entitlement.Entitlement, error) {
	if err := e.rule.Check(ctx, c, p, e.now(), quantity); err != nil {
		return nil, err
	}
	if err := p.Consume(quantity); err != nil {
		return nil, err
	}
	if err := e.savePool(ctx, u, p); err != nil {
		return nil, err
	}

	ent, err := entitlement.NewEntitlement(c.OwnerID(), c.UUID(), p.ID(), quantity)
	if err != nil {
		return nil, err
	}
	if err := e.entitlements.Create(ctx, ent); err != nil {
		return nil, fmt.Errorf("failed to create entitlement: %w", err)
	}
	u.entitlementCreated(ent)

	if _, err := e.deriveForHost(ctx, u, p, c, ent); err != nil {
		return nil, err
	}
	return ent, nil
}

// Unbind revokes an entitlement together with whatever it sourced.
func (e *Engine) Unbind(ctx context.Context, entitlementID string) (*Report, error) {
	ent, err := e.entitlements.GetByID(ctx, entitlementID)
	if err != nil {
		return nil, translateError(err)
	}
	u, err := e.withOwner(ctx, ent.OwnerID(), OperationUnbind, func(ctx context.Context, u *unitOfWork) error {
		current, err := e.entitlements.GetByID(ctx, entitlementID)
		if err != nil {
			return err
		}
		return e.revokeEntitlement(ctx, u, current)
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &u.report, nil
}

// ListConsumerPools returns the owner's pools the consumer may see. Pools
// restricted to other hosts' guests or other consumers are hidden.
func (e *Engine) ListConsumerPools(ctx context.Context, consumerUUID string) ([]*pool.Pool, error) {
	c, err := e.consumers.GetConsumer(ctx, consumerUUID)
	if err != nil {
		return nil, translateError(err)
	}
	pools, err := e.pools.ListByOwner(ctx, c.OwnerID())
	if err != nil {
		return nil, err
	}
	visible := make([]*pool.Pool, 0, len(pools))
	now := e.now()
	for _, p := range pools {
		err := e.rule.Check(ctx, c, p, now, 0)
		if isAny(err, forbiddenErrors) || errors.Is(err, pool.ErrPoolNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		visible = append(visible, p)
	}
	return visible, nil
}

func (e *Engine) ListOwnerPools(ctx context.Context, ownerKey string) ([]*pool.Pool, error) {
	if ownerKey == "" {
		return nil, sharedErrors.NewInvalidArgumentError("owner key is required")
	}
	owner, err := e.ownerByKey(ctx, ownerKey)
	if err != nil {
		return nil, translateError(err)
	}
	return e.pools.ListByOwner(ctx, owner.ID())
}

func (e *Engine) GetPool(ctx context.Context, poolID string) (*pool.Pool, error) {
	p, err := e.pools.GetByID(ctx, poolID)
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

func (e *Engine) ListEntitlements(ctx context.Context, consumerUUID string) ([]*entitlement.Entitlement, error) {
	if _, err := e.consumers.GetConsumer(ctx, consumerUUID); err != nil {
		return nil, translateError(err)
	}
	return e.entitlements.ListByConsumer(ctx, consumerUUID)
}

func (e *Engine) GetEntitlement(ctx context.Context, entitlementID string) (*entitlement.Entitlement, error) {
	ent, err := e.entitlements.GetByID(ctx, entitlementID)
	if err != nil {
		return nil, translateError(err)
	}
	return ent, nil
}
