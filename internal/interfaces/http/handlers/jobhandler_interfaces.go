package handlers

import (
	"context"

	jobdto "github.com/orris-inc/poolkeeper/internal/application/job/dto"
	"github.com/orris-inc/poolkeeper/internal/application/job/usecases"
)

// Use case interfaces for JobHandler

type submitJobUseCase interface {
	Execute(ctx context.Context, cmd usecases.SubmitJobCommand) (*jobdto.JobDTO, error)
}

type listJobsUseCase interface {
	Execute(ctx context.Context, ownerKey string) ([]*jobdto.JobDTO, error)
}

type getJobUseCase interface {
	Execute(ctx context.Context, jobID string) (*jobdto.JobDTO, error)
}

type cancelJobUseCase interface {
	Execute(ctx context.Context, jobID string) (*jobdto.JobDTO, error)
}

type schedulerStatusUseCase interface {
	Get(ctx context.Context) (*jobdto.SchedulerStatusDTO, error)
	Set(ctx context.Context, enabled bool) (*jobdto.SchedulerStatusDTO, error)
}
