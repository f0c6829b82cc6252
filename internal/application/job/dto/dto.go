package dto

import (
	"time"

	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/shared/mapper"
)

// JobDTO is the API view of a job
type JobDTO struct {
	ID         string            `json:"id"`
	OwnerKey   string            `json:"owner_key"`
	Type       string            `json:"type"`
	State      string            `json:"state"`
	Principal  string            `json:"principal,omitempty"`
	TargetID   string            `json:"target_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	Result     string            `json:"result,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// SchedulerStatusDTO reports whether queued jobs are being dispatched
type SchedulerStatusDTO struct {
	Enabled bool `json:"enabled"`
}

// ToJobDTO converts a domain job to its DTO
func ToJobDTO(j *job.Job) *JobDTO {
	if j == nil {
		return nil
	}
	return &JobDTO{
		ID:         j.ID(),
		OwnerKey:   j.OwnerKey(),
		Type:       string(j.Type()),
		State:      string(j.State()),
		Principal:  j.Principal(),
		TargetID:   j.TargetID(),
		Data:       j.Data(),
		Result:     j.Result(),
		CreatedAt:  j.CreatedAt(),
		UpdatedAt:  j.UpdatedAt(),
		StartedAt:  j.StartedAt(),
		FinishedAt: j.FinishedAt(),
	}
}

// ToJobDTOs converts a list of domain jobs
func ToJobDTOs(jobs []*job.Job) []*JobDTO {
	return mapper.MapSlice(jobs, ToJobDTO)
}
