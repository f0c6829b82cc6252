package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/poolkeeper/internal/domain/pool"
)

const OperationExpire = "expire_development"

// ExpireDevelopmentPools deletes DEVELOPMENT pools past their end date, with
// their entitlements, and returns how many pools were removed.
func (e *Engine) ExpireDevelopmentPools(ctx context.Context) (int, error) {
	now := e.now()
	expired, err := e.pools.ListExpiredDevelopment(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired development pools: %w", err)
	}

	byOwner := make(map[string][]string)
	var owners []string
	for _, p := range expired {
		if _, ok := byOwner[p.OwnerID()]; !ok {
			owners = append(owners, p.OwnerID())
		}
		byOwner[p.OwnerID()] = append(byOwner[p.OwnerID()], p.ID())
	}

	removed := 0
	for _, ownerID := range owners {
		u, err := e.withOwner(ctx, ownerID, OperationExpire, func(ctx context.Context, u *unitOfWork) error {
			for _, poolID := range byOwner[ownerID] {
				p, err := e.loadPool(ctx, u, poolID)
				if errors.Is(err, pool.ErrPoolNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				if !p.EndDate().Before(now) {
					continue
				}
				if err := e.deletePool(ctx, u, p); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			e.logger.Errorw("failed to expire development pools", "owner_id", ownerID, "error", err)
			return removed, err
		}
		removed += len(u.report.DeletedPools)
	}
	return removed, nil
}
