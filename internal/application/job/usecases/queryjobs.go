package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/poolkeeper/internal/application/job/dto"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// ListJobsUseCase lists the jobs of one owner key, oldest first
type ListJobsUseCase struct {
	jobRepo job.Repository
	logger  logger.Interface
}

func NewListJobsUseCase(jobRepo job.Repository, logger logger.Interface) *ListJobsUseCase {
	return &ListJobsUseCase{jobRepo: jobRepo, logger: logger}
}

// Execute returns an empty list for keys that never had a job.
func (uc *ListJobsUseCase) Execute(ctx context.Context, ownerKey string) ([]*dto.JobDTO, error) {
	if ownerKey == "" {
		return nil, sharedErrors.NewInvalidArgumentError("owner key is required")
	}
	jobs, err := uc.jobRepo.ListByOwnerKey(ctx, ownerKey)
	if err != nil {
		uc.logger.Errorw("failed to list jobs", "owner_key", ownerKey, "error", err)
		return nil, err
	}
	return dto.ToJobDTOs(jobs), nil
}

type GetJobUseCase struct {
	jobRepo job.Repository
	logger  logger.Interface
}

func NewGetJobUseCase(jobRepo job.Repository, logger logger.Interface) *GetJobUseCase {
	return &GetJobUseCase{jobRepo: jobRepo, logger: logger}
}

func (uc *GetJobUseCase) Execute(ctx context.Context, jobID string) (*dto.JobDTO, error) {
	j, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return nil, sharedErrors.NewNotFoundError("job not found", jobID)
		}
		uc.logger.Errorw("failed to get job", "job_id", jobID, "error", err)
		return nil, err
	}
	return dto.ToJobDTO(j), nil
}
