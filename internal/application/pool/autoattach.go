package pool

import (
	"context"
	"fmt"
	"slices"

	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
)

const OperationAutoAttach = "auto_attach"

// AutoAttach covers the consumer's installed products. A consumer with a
// dev_sku fact gets a fresh DEVELOPMENT pool instead. The returned slice holds
// only entitlements created by this call and may be empty.
func (e *Engine) AutoAttach(ctx context.Context, consumerUUID string) ([]*entitlement.Entitlement, error) {
	c, err := e.consumers.GetConsumer(ctx, consumerUUID)
	if err != nil {
		return nil, translateError(err)
	}

	var granted []*entitlement.Entitlement
	_, err = e.withOwner(ctx, c.OwnerID(), OperationAutoAttach, func(ctx context.Context, u *unitOfWork) error {
		c, err := e.consumers.GetConsumer(ctx, consumerUUID)
		if err != nil {
			return err
		}
		if c.DevSKU() != "" {
			granted, err = e.attachDevelopment(ctx, u, c)
			return err
		}
		granted, err = e.attachStandard(ctx, u, c)
		return err
	})
	if err != nil {
		e.logger.Warnw("auto-attach failed", "consumer_uuid", consumerUUID, "error", err)
		return nil, translateError(err)
	}
	if granted == nil {
		granted = []*entitlement.Entitlement{}
	}
	e.logger.Infow("auto-attach finished", "consumer_uuid", consumerUUID, "granted", len(granted))
	return granted, nil
}

// attachDevelopment replaces the consumer's DEVELOPMENT pools with a new one
// and binds it.
func (e *Engine) attachDevelopment(ctx context.Context, u *unitOfWork, c *consumer.Consumer) ([]*entitlement.Entitlement, error) {
	product, err := e.products.GetProduct(ctx, c.DevSKU())
	if err != nil {
		return nil, fmt.Errorf("dev sku %s: %w", c.DevSKU(), err)
	}

	existing, err := e.pools.ListDevelopmentForConsumer(ctx, c.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to list development pools: %w", err)
	}
	for _, p := range u.live(existing) {
		if err := e.deletePool(ctx, u, p); err != nil {
			return nil, err
		}
	}

	now := e.now()
	p, err := pool.NewDevelopmentPool(c.OwnerID(), product.ID(), c.UUID(), c.InstalledProducts(), now, now.Add(product.ExpiresAfter()))
	if err != nil {
		return nil, err
	}
	if err := e.createPool(ctx, u, p); err != nil {
		return nil, err
	}
	ent, err := e.bindPool(ctx, u, c, p, 1)
	if err != nil {
		return nil, err
	}
	return []*entitlement.Entitlement{ent}, nil
}

// attachStandard binds the best-ranked eligible pools one at a time until
// every installed product is covered or no candidate is left.
func (e *Engine) attachStandard(ctx context.Context, u *unitOfWork, c *consumer.Consumer) ([]*entitlement.Entitlement, error) {
	installed := c.InstalledProducts()
	if len(installed) == 0 {
		return nil, nil
	}

	held, err := e.entitlements.ListByConsumer(ctx, c.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	heldPools := make(map[string]bool, len(held))
	uncovered := slices.Clone(installed)
	for _, ent := range held {
		if u.revoked[ent.ID()] {
			continue
		}
		p, err := e.loadPool(ctx, u, ent.PoolID())
		if err != nil {
			return nil, err
		}
		heldPools[p.ID()] = true
		uncovered = slices.DeleteFunc(uncovered, p.Provides)
	}
	if len(uncovered) == 0 {
		return nil, nil
	}

	candidates, err := e.gatherCandidates(ctx, u, c, heldPools)
	if err != nil {
		return nil, err
	}

	var granted []*entitlement.Entitlement
	for len(uncovered) > 0 {
		candidates = coverage(candidates, uncovered)
		if len(candidates) == 0 {
			break
		}
		best := e.ranker.Rank(c, candidates)[0]
		candidates = slices.DeleteFunc(candidates, func(cand Candidate) bool { return cand.Pool.ID() == best.Pool.ID() })

		ent, err := e.bindPool(ctx, u, c, best.Pool, 1)
		if isAny(err, forbiddenErrors) {
			continue
		}
		if err != nil {
			return nil, err
		}
		granted = append(granted, ent)
		uncovered = slices.DeleteFunc(uncovered, best.Pool.Provides)
	}
	return granted, nil
}

func (e *Engine) gatherCandidates(ctx context.Context, u *unitOfWork, c *consumer.Consumer, heldPools map[string]bool) ([]Candidate, error) {
	pools, err := e.pools.ListByOwner(ctx, c.OwnerID())
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	var hostSeq map[string]uint64
	now := e.now()
	candidates := make([]Candidate, 0, len(pools))
	for _, p := range u.live(pools) {
		if heldPools[p.ID()] {
			continue
		}
		err := e.rule.Check(ctx, c, p, now, 1)
		if isAny(err, forbiddenErrors) {
			continue
		}
		if err != nil {
			return nil, err
		}

		cand := Candidate{Pool: p}
		if host := p.RequiresHost(); host != "" {
			if hostSeq == nil {
				if hostSeq, err = e.hostSequences(ctx, c); err != nil {
					return nil, err
				}
			}
			cand.HostSeq = hostSeq[host]
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

func (e *Engine) hostSequences(ctx context.Context, c *consumer.Consumer) (map[string]uint64, error) {
	mappings, err := e.consumers.ListMappingsForGuest(ctx, c.OwnerID(), c.VirtUUID())
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts of %s: %w", c.UUID(), err)
	}
	seqs := make(map[string]uint64, len(mappings))
	for _, m := range mappings {
		if _, ok := seqs[m.HostUUID]; !ok {
			seqs[m.HostUUID] = m.Seq
		}
	}
	return seqs, nil
}

// coverage recomputes which uncovered products each candidate covers and drops
// candidates covering none.
func coverage(candidates []Candidate, uncovered []string) []Candidate {
	out := candidates[:0]
	for _, cand := range candidates {
		cand.Covers = nil
		for _, productID := range uncovered {
			if cand.Pool.Provides(productID) {
				cand.Covers = append(cand.Covers, productID)
			}
		}
		if len(cand.Covers) > 0 {
			out = append(out, cand)
		}
	}
	return out
}
