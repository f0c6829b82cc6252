// Package job models asynchronous work submitted against an owner: reconciling
// its pools or auto-attaching a consumer. Jobs move through a small state machine
// and never leave a terminal state.
package job

import (
	"fmt"
	"maps"
	"time"

	"github.com/orris-inc/poolkeeper/internal/shared/id"
)

// Type names the work a job performs.
type Type string

const (
	TypeRefreshPools   Type = "refresh_pools"
	TypeConsumeProduct Type = "consume_product"
)

// IsValid reports whether t is a known job type.
func (t Type) IsValid() bool {
	return t == TypeRefreshPools || t == TypeConsumeProduct
}

// State is the lifecycle state of a job.
type State string

const (
	StateCreated   State = "CREATED"
	StateRunning   State = "RUNNING"
	StateCancelled State = "CANCELLED"
	StateFailed    State = "FAILED"
	StateFinished  State = "FINISHED"
)

var validTransitions = map[State][]State{
	StateCreated: {StateRunning, StateCancelled},
	StateRunning: {StateFinished, StateFailed},
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	switch s {
	case StateCreated, StateRunning, StateCancelled, StateFailed, StateFinished:
		return true
	}
	return false
}

// IsTerminal reports whether s can never change again.
func (s State) IsTerminal() bool {
	return s == StateCancelled || s == StateFailed || s == StateFinished
}

// CanTransitionTo reports whether moving from s to to is allowed.
func (s State) CanTransitionTo(to State) bool {
	for _, next := range validTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Data keys carried on jobs.
const (
	DataKeyLazy = "lazy"
)

// Job is the job aggregate root.
type Job struct {
	id         string
	ownerKey   string
	jobType    Type
	state      State
	principal  string
	targetID   string
	data       map[string]string
	result     string
	createdAt  time.Time
	updatedAt  time.Time
	startedAt  *time.Time
	finishedAt *time.Time
}

// NewJob creates a job in state CREATED.
func NewJob(ownerKey string, jobType Type, principal, targetID string, data map[string]string) (*Job, error) {
	if ownerKey == "" {
		return nil, ErrOwnerKeyRequired
	}
	if !jobType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, jobType)
	}
	if jobType == TypeConsumeProduct && targetID == "" {
		return nil, ErrTargetRequired
	}
	if data == nil {
		data = make(map[string]string)
	}

	now := time.Now().UTC()
	return &Job{
		id:        id.NewJobID(),
		ownerKey:  ownerKey,
		jobType:   jobType,
		state:     StateCreated,
		principal: principal,
		targetID:  targetID,
		data:      maps.Clone(data),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructJob rebuilds a job from persistence.
func ReconstructJob(
	jobID, ownerKey string,
	jobType Type,
	state State,
	principal, targetID string,
	data map[string]string,
	result string,
	createdAt, updatedAt time.Time,
	startedAt, finishedAt *time.Time,
) (*Job, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job ID cannot be empty")
	}
	if !jobType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, jobType)
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, state)
	}
	if data == nil {
		data = make(map[string]string)
	}
	return &Job{
		id:         jobID,
		ownerKey:   ownerKey,
		jobType:    jobType,
		state:      state,
		principal:  principal,
		targetID:   targetID,
		data:       data,
		result:     result,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		startedAt:  startedAt,
		finishedAt: finishedAt,
	}, nil
}

func (j *Job) ID() string                  { return j.id }
func (j *Job) OwnerKey() string            { return j.ownerKey }
func (j *Job) Type() Type                  { return j.jobType }
func (j *Job) State() State                { return j.state }
func (j *Job) Principal() string           { return j.principal }
func (j *Job) TargetID() string            { return j.targetID }
func (j *Job) Result() string              { return j.result }
func (j *Job) CreatedAt() time.Time        { return j.createdAt }
func (j *Job) UpdatedAt() time.Time        { return j.updatedAt }
func (j *Job) StartedAt() *time.Time       { return j.startedAt }
func (j *Job) FinishedAt() *time.Time      { return j.finishedAt }
func (j *Job) Data() map[string]string     { return maps.Clone(j.data) }
func (j *Job) DataValue(key string) string { return j.data[key] }

// IsTerminal reports whether the job reached CANCELLED, FAILED or FINISHED.
func (j *Job) IsTerminal() bool {
	return j.state.IsTerminal()
}

// Lazy reports whether a refresh was requested without consumer regeneration.
func (j *Job) Lazy() bool {
	return j.data[DataKeyLazy] == "true"
}
