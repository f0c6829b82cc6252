package job

import "errors"

var (
	// ErrJobNotFound is returned when a job id does not exist
	ErrJobNotFound = errors.New("job not found")

	// ErrOwnerKeyRequired is returned for an empty owner key
	ErrOwnerKeyRequired = errors.New("owner key is required")

	// ErrTargetRequired is returned when a consume job has no consumer
	ErrTargetRequired = errors.New("target consumer is required")

	ErrInvalidType  = errors.New("invalid job type")
	ErrInvalidState = errors.New("invalid job state")

	// ErrJobRunning is returned when cancelling a job that already started
	ErrJobRunning = errors.New("job is already running")
)
