package pool

import "errors"

var (
	// ErrPoolNotFound is returned when a pool id does not exist
	ErrPoolNotFound = errors.New("pool not found")

	// ErrPoolExhausted is returned when a bounded pool has no quantity left
	ErrPoolExhausted = errors.New("pool has no available quantity")

	// ErrPoolInactive is returned when consuming outside the pool's window
	ErrPoolInactive = errors.New("pool is not active")

	// ErrHostRestricted is returned when a consumer is not a current guest of the pool's host
	ErrHostRestricted = errors.New("pool is restricted to guests of another host")

	// ErrConsumerRestricted is returned when a pool is reserved for another consumer
	ErrConsumerRestricted = errors.New("pool is restricted to another consumer")

	// ErrVersionConflict is returned when an optimistic update lost a race
	ErrVersionConflict = errors.New("pool was modified concurrently")

	ErrOwnerRequired         = errors.New("owner ID is required")
	ErrProductRequired       = errors.New("product ID is required")
	ErrConsumerRequired      = errors.New("consumer UUID is required")
	ErrDerivedSourceRequired = errors.New("derived pool needs a host and a source entitlement")
	ErrInvalidType           = errors.New("invalid pool type")
	ErrInvalidQuantity       = errors.New("invalid pool quantity")
)
