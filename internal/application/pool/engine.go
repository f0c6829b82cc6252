// Package pool runs the entitlement engine: reconciling subscriptions into pools,
// deriving guest pools, binding consumers and revoking what no longer holds.
// Every mutation runs under the owner lock inside one database transaction.
package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	"github.com/orris-inc/poolkeeper/internal/shared/db"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// Engine is the pool application service.
type Engine struct {
	owners        catalog.OwnerRepository
	subscriptions SubscriptionSource
	products      ProductCatalog
	pools         pool.Repository
	entitlements  entitlement.Repository
	consumers     consumer.Repository
	topology      Topology
	txMgr         *db.TransactionManager

	locker OwnerLocker
	events pool.EventPublisher
	rule   EligibilityRule
	ranker Ranker
	now    func() time.Time
	logger logger.Interface
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLocker replaces the in-process owner lock, e.g. with a Redis lock shared
// by several processes.
func WithLocker(l OwnerLocker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithEventPublisher announces committed pool changes.
func WithEventPublisher(p pool.EventPublisher) Option {
	return func(e *Engine) { e.events = p }
}

func WithEligibilityRule(r EligibilityRule) Option {
	return func(e *Engine) { e.rule = r }
}

func WithRanker(r Ranker) Option {
	return func(e *Engine) { e.ranker = r }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the engine. consumers also serves as the topology source.
func NewEngine(
	owners catalog.OwnerRepository,
	subscriptions SubscriptionSource,
	products ProductCatalog,
	pools pool.Repository,
	entitlements entitlement.Repository,
	consumers consumer.Repository,
	txMgr *db.TransactionManager,
	log logger.Interface,
	opts ...Option,
) *Engine {
	e := &Engine{
		owners:        owners,
		subscriptions: subscriptions,
		products:      products,
		pools:         pools,
		entitlements:  entitlements,
		consumers:     consumers,
		topology:      consumers,
		txMgr:         txMgr,
		locker:        NewKeyedLocker(),
		now:           func() time.Time { return time.Now().UTC() },
		logger:        log,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rule == nil {
		e.rule = NewDefaultEligibility(e.topology)
	}
	if e.ranker == nil {
		e.ranker = DefaultRanker{}
	}
	return e
}

// withOwner runs fn under the owner lock in a single transaction and publishes
// the resulting change event once the transaction committed.
func (e *Engine) withOwner(ctx context.Context, ownerID, operation string, fn func(ctx context.Context, u *unitOfWork) error) (*unitOfWork, error) {
	unlock, err := e.locker.Lock(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock owner %s: %w", ownerID, err)
	}
	defer unlock()

	u := newUnitOfWork(ownerID, operation)
	if err := e.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		return fn(txCtx, u)
	}); err != nil {
		return nil, err
	}

	e.publish(ctx, u)
	return u, nil
}

func (e *Engine) publish(ctx context.Context, u *unitOfWork) {
	if e.events == nil {
		return
	}
	event := u.changeEvent(e.now().Unix())
	if event.IsEmpty() {
		return
	}
	if err := e.events.PublishPoolChange(ctx, event); err != nil {
		e.logger.Warnw("failed to publish pool change",
			"owner_id", u.ownerID,
			"operation", u.operation,
			"error", err,
		)
	}
}

// loadPool returns the unit of work's copy of a pool.
func (e *Engine) loadPool(ctx context.Context, u *unitOfWork, poolID string) (*pool.Pool, error) {
	if u.deleted[poolID] {
		return nil, pool.ErrPoolNotFound
	}
	if p, ok := u.pools[poolID]; ok {
		return p, nil
	}
	p, err := e.pools.GetByID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return u.adopt(p), nil
}

func (e *Engine) savePool(ctx context.Context, u *unitOfWork, p *pool.Pool) error {
	if err := e.pools.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update pool %s: %w", p.ID(), err)
	}
	u.poolUpdated(p)
	return nil
}

func (e *Engine) createPool(ctx context.Context, u *unitOfWork, p *pool.Pool) error {
	if err := e.pools.Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	u.poolCreated(p)
	return nil
}

func (e *Engine) ownerByKey(ctx context.Context, ownerKey string) (*catalog.Owner, error) {
	owner, err := e.owners.GetByKey(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	return owner, nil
}
