package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/testutil"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/repository"
	"github.com/orris-inc/poolkeeper/internal/shared/db"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// tickingClock advances a millisecond on every read.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *tickingClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []pool.ChangeEvent
}

func (p *recordingPublisher) PublishPoolChange(_ context.Context, event pool.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []pool.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pool.ChangeEvent(nil), p.events...)
}

type fixture struct {
	t   *testing.T
	ctx context.Context

	engine    *Engine
	clock     *tickingClock
	events    *recordingPublisher
	owners    catalog.OwnerRepository
	products  catalog.ProductRepository
	subs      catalog.SubscriptionRepository
	pools     pool.Repository
	ents      entitlement.Repository
	consumers consumer.Repository
	owner     *catalog.Owner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewSQLiteDB(t)
	log := logger.Nop()

	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		clock:     &tickingClock{now: time.Now().UTC()},
		events:    &recordingPublisher{},
		owners:    repository.NewOwnerRepository(gdb, log),
		products:  repository.NewProductRepository(gdb, log),
		subs:      repository.NewSubscriptionRepository(gdb, log),
		pools:     repository.NewPoolRepository(gdb, log),
		ents:      repository.NewEntitlementRepository(gdb, log),
		consumers: repository.NewConsumerRepository(gdb, log),
	}
	f.engine = NewEngine(f.owners, f.subs, f.products, f.pools, f.ents, f.consumers,
		db.NewTransactionManager(gdb), log,
		WithClock(f.clock.Now),
		WithEventPublisher(f.events),
	)

	owner, err := catalog.NewOwner("acme", "ACME Corp")
	require.NoError(t, err)
	require.NoError(t, f.owners.Create(f.ctx, owner))
	f.owner = owner
	return f
}

func (f *fixture) product(productID string, attrs map[string]string, provided ...string) *catalog.Product {
	f.t.Helper()
	p, err := catalog.NewProduct(productID, productID, attrs, provided)
	require.NoError(f.t, err)
	require.NoError(f.t, f.products.Save(f.ctx, p))
	return p
}

func (f *fixture) subscription(productID string, quantity int64) *catalog.Subscription {
	f.t.Helper()
	now := time.Now().UTC()
	s, err := catalog.NewSubscription(f.owner.ID(), productID, quantity, now.Add(-24*time.Hour), now.Add(365*24*time.Hour))
	require.NoError(f.t, err)
	require.NoError(f.t, f.subs.Create(f.ctx, s))
	return s
}

func (f *fixture) register(name string, facts map[string]string, installed []string, guests ...string) *consumer.Consumer {
	f.t.Helper()
	ctype := consumer.TypeSystem
	if len(guests) > 0 {
		ctype = consumer.TypeHypervisor
	}
	c, err := f.engine.RegisterConsumer(f.ctx, RegisterConsumerCommand{
		OwnerKey:          f.owner.Key(),
		Name:              name,
		Type:              ctype,
		Facts:             facts,
		InstalledProducts: installed,
		GuestIDs:          guests,
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) guest(name, virtUUID string, installed ...string) *consumer.Consumer {
	f.t.Helper()
	return f.register(name, map[string]string{
		consumer.FactVirtUUID:    virtUUID,
		consumer.FactVirtIsGuest: "true",
	}, installed)
}

func (f *fixture) reportGuests(host *consumer.Consumer, guests ...string) {
	f.t.Helper()
	_, err := f.engine.UpdateConsumer(f.ctx, host.UUID(), UpdateConsumerCommand{GuestIDs: &guests})
	require.NoError(f.t, err)
}

func (f *fixture) reconcile() *Report {
	f.t.Helper()
	report, err := f.engine.Reconcile(f.ctx, f.owner.Key(), false)
	require.NoError(f.t, err)
	return report
}

func (f *fixture) bind(c *consumer.Consumer, p *pool.Pool, quantity int64) *entitlement.Entitlement {
	f.t.Helper()
	ent, err := f.engine.Bind(f.ctx, c.UUID(), p.ID(), quantity)
	require.NoError(f.t, err)
	return ent
}

func (f *fixture) normalPool(sub *catalog.Subscription) *pool.Pool {
	f.t.Helper()
	pools, err := f.pools.ListByOwnerAndType(f.ctx, f.owner.ID(), pool.TypeNormal)
	require.NoError(f.t, err)
	for _, p := range pools {
		if p.SourceSubscriptionID() == sub.ID() {
			return p
		}
	}
	f.t.Fatalf("no pool for subscription %s", sub.ID())
	return nil
}

func (f *fixture) derivedPools() []*pool.Pool {
	f.t.Helper()
	pools, err := f.pools.ListByOwnerAndType(f.ctx, f.owner.ID(), pool.TypeDerivedVirt)
	require.NoError(f.t, err)
	return pools
}

func (f *fixture) derivedPoolFor(host *consumer.Consumer) *pool.Pool {
	f.t.Helper()
	pools, err := f.pools.ListDerivedForHost(f.ctx, host.UUID())
	require.NoError(f.t, err)
	require.Len(f.t, pools, 1)
	return pools[0]
}

func (f *fixture) entitlementsOf(c *consumer.Consumer) []*entitlement.Entitlement {
	f.t.Helper()
	ents, err := f.ents.ListByConsumer(f.ctx, c.UUID())
	require.NoError(f.t, err)
	return ents
}

func (f *fixture) reload(p *pool.Pool) *pool.Pool {
	f.t.Helper()
	got, err := f.pools.GetByID(f.ctx, p.ID())
	require.NoError(f.t, err)
	return got
}

func entitlementIDs(ents []*entitlement.Entitlement) []string {
	ids := make([]string, 0, len(ents))
	for _, e := range ents {
		ids = append(ids, e.ID())
	}
	return ids
}
