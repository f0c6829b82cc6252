package catalog

import "errors"

var (
	ErrOwnerNotFound        = errors.New("owner not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")

	ErrOwnerKeyRequired  = errors.New("owner key is required")
	ErrOwnerIDRequired   = errors.New("owner ID is required")
	ErrProductIDRequired = errors.New("product ID is required")
	ErrInvalidQuantity   = errors.New("invalid subscription quantity")
	ErrInvalidWindow     = errors.New("subscription end date must be after start date")
	ErrOwnerExists       = errors.New("owner already exists")
)
