package pool

import (
	"slices"

	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
)

// Report lists what one owner-scoped operation changed.
type Report struct {
	OwnerID             string   `json:"owner_id"`
	Operation           string   `json:"operation"`
	Lazy                bool     `json:"lazy,omitempty"`
	CreatedPools        []string `json:"created_pools"`
	UpdatedPools        []string `json:"updated_pools"`
	DeletedPools        []string `json:"deleted_pools"`
	CreatedEntitlements []string `json:"created_entitlements"`
	RevokedEntitlements []string `json:"revoked_entitlements"`
	AffectedConsumers   []string `json:"affected_consumers,omitempty"`
}

// unitOfWork tracks one owner-scoped operation: every pool it touches is loaded
// once and shared, so cascades never write a stale copy.
type unitOfWork struct {
	ownerID   string
	operation string

	pools   map[string]*pool.Pool
	deleted map[string]bool
	created map[string]bool
	revoked map[string]bool

	report    Report
	consumers map[string]struct{}
}

func newUnitOfWork(ownerID, operation string) *unitOfWork {
	return &unitOfWork{
		ownerID:   ownerID,
		operation: operation,
		pools:     make(map[string]*pool.Pool),
		deleted:   make(map[string]bool),
		created:   make(map[string]bool),
		revoked:   make(map[string]bool),
		consumers: make(map[string]struct{}),
		report: Report{
			OwnerID:             ownerID,
			Operation:           operation,
			CreatedPools:        []string{},
			UpdatedPools:        []string{},
			DeletedPools:        []string{},
			CreatedEntitlements: []string{},
			RevokedEntitlements: []string{},
		},
	}
}

// adopt returns the tracked instance of p, tracking p if it is new.
func (u *unitOfWork) adopt(p *pool.Pool) *pool.Pool {
	if tracked, ok := u.pools[p.ID()]; ok {
		return tracked
	}
	u.pools[p.ID()] = p
	return p
}

// live adopts every pool that has not been deleted in this unit of work.
func (u *unitOfWork) live(pools []*pool.Pool) []*pool.Pool {
	out := make([]*pool.Pool, 0, len(pools))
	for _, p := range pools {
		if u.deleted[p.ID()] {
			continue
		}
		out = append(out, u.adopt(p))
	}
	return out
}

func (u *unitOfWork) poolCreated(p *pool.Pool) {
	u.pools[p.ID()] = p
	u.created[p.ID()] = true
	u.report.CreatedPools = append(u.report.CreatedPools, p.ID())
}

func (u *unitOfWork) poolUpdated(p *pool.Pool) {
	if u.created[p.ID()] || slices.Contains(u.report.UpdatedPools, p.ID()) {
		return
	}
	u.report.UpdatedPools = append(u.report.UpdatedPools, p.ID())
}

func (u *unitOfWork) poolDeleting(poolID string) {
	u.deleted[poolID] = true
}

func (u *unitOfWork) poolDeleted(poolID string) {
	delete(u.pools, poolID)
	u.report.UpdatedPools = slices.DeleteFunc(u.report.UpdatedPools, func(id string) bool { return id == poolID })
	u.report.DeletedPools = append(u.report.DeletedPools, poolID)
}

func (u *unitOfWork) entitlementCreated(e *entitlement.Entitlement) {
	u.report.CreatedEntitlements = append(u.report.CreatedEntitlements, e.ID())
	u.touchConsumer(e.ConsumerUUID())
}

func (u *unitOfWork) entitlementRevoked(e *entitlement.Entitlement) {
	u.revoked[e.ID()] = true
	u.report.RevokedEntitlements = append(u.report.RevokedEntitlements, e.ID())
	u.touchConsumer(e.ConsumerUUID())
}

func (u *unitOfWork) touchConsumer(consumerUUID string) {
	if _, ok := u.consumers[consumerUUID]; ok {
		return
	}
	u.consumers[consumerUUID] = struct{}{}
	u.report.AffectedConsumers = append(u.report.AffectedConsumers, consumerUUID)
}

func (u *unitOfWork) changeEvent(timestamp int64) pool.ChangeEvent {
	return pool.ChangeEvent{
		OwnerID:             u.ownerID,
		Operation:           u.operation,
		CreatedPools:        u.report.CreatedPools,
		UpdatedPools:        u.report.UpdatedPools,
		DeletedPools:        u.report.DeletedPools,
		CreatedEntitlements: u.report.CreatedEntitlements,
		RevokedEntitlements: u.report.RevokedEntitlements,
		AffectedConsumers:   u.report.AffectedConsumers,
		Timestamp:           timestamp,
	}
}
