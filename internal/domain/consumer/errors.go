package consumer

import "errors"

var (
	// ErrConsumerNotFound is returned when a consumer uuid does not exist
	ErrConsumerNotFound = errors.New("consumer not found")

	// ErrVersionConflict is returned when an optimistic update lost a race
	ErrVersionConflict = errors.New("consumer was modified concurrently")

	ErrOwnerIDRequired = errors.New("owner ID is required")
	ErrNameRequired    = errors.New("consumer name is required")
	ErrInvalidType     = errors.New("invalid consumer type")
)
