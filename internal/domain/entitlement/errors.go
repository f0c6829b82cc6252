package entitlement

import "errors"

var (
	// ErrEntitlementNotFound is returned when an entitlement is not found
	ErrEntitlementNotFound = errors.New("entitlement not found")

	ErrOwnerIDRequired  = errors.New("owner ID is required")
	ErrConsumerRequired = errors.New("consumer UUID is required")
	ErrPoolIDRequired   = errors.New("pool ID is required")
	ErrInvalidQuantity  = errors.New("entitlement quantity must be at least 1")
)
