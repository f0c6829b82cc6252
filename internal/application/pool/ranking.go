package pool

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
)

// EligibilityRule decides whether a consumer may draw quantity from a pool at
// a point in time. A quantity of 0 checks visibility only.
type EligibilityRule interface {
	Check(ctx context.Context, c *consumer.Consumer, p *pool.Pool, at time.Time, quantity int64) error
}

// DefaultEligibility enforces pool windows, remaining quantity, host
// restrictions of derived pools and consumer restrictions of development pools.
type DefaultEligibility struct {
	topology Topology
}

func NewDefaultEligibility(topology Topology) *DefaultEligibility {
	return &DefaultEligibility{topology: topology}
}

func (r *DefaultEligibility) Check(ctx context.Context, c *consumer.Consumer, p *pool.Pool, at time.Time, quantity int64) error {
	if c.OwnerID() != p.OwnerID() {
		return pool.ErrPoolNotFound
	}
	if required := p.RequiresConsumer(); required != "" && required != c.UUID() {
		return pool.ErrConsumerRestricted
	}
	if host := p.RequiresHost(); host != "" {
		guests, err := r.topology.GetGuestIDs(ctx, host)
		if err != nil {
			return fmt.Errorf("failed to load guests of host %s: %w", host, err)
		}
		if !slices.Contains(guests, c.VirtUUID()) {
			return pool.ErrHostRestricted
		}
	}
	if quantity == 0 {
		return nil
	}
	if !p.IsActiveAt(at) {
		return pool.ErrPoolInactive
	}
	if !p.EntitlementsAvailable(quantity) {
		return pool.ErrPoolExhausted
	}
	return nil
}

// Candidate is a pool considered during auto-attach.
type Candidate struct {
	Pool *pool.Pool
	// Covers lists the still-uncovered products the pool would cover.
	Covers []string
	// HostSeq is the mapping sequence of the pool's host for this guest,
	// zero for pools without a host restriction.
	HostSeq uint64
}

// Ranker orders candidates, best first.
type Ranker interface {
	Rank(c *consumer.Consumer, candidates []Candidate) []Candidate
}

// DefaultRanker prefers pools covering more products, then host-restricted
// pools, then the most recently reporting host, then the earliest end date.
type DefaultRanker struct{}

func (DefaultRanker) Rank(_ *consumer.Consumer, candidates []Candidate) []Candidate {
	out := slices.Clone(candidates)
	slices.SortStableFunc(out, func(a, b Candidate) int {
		if n := cmp.Compare(len(b.Covers), len(a.Covers)); n != 0 {
			return n
		}
		aHost, bHost := a.Pool.RequiresHost() != "", b.Pool.RequiresHost() != ""
		if aHost != bHost {
			if aHost {
				return -1
			}
			return 1
		}
		if n := cmp.Compare(b.HostSeq, a.HostSeq); n != 0 {
			return n
		}
		if n := a.Pool.EndDate().Compare(b.Pool.EndDate()); n != 0 {
			return n
		}
		return cmp.Compare(a.Pool.ID(), b.Pool.ID())
	})
	return out
}
