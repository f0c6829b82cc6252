package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/poolkeeper/internal/application/job/dto"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// CancelJobUseCase cancels a queued job. Cancelling a finished job is a no-op;
// a running job cannot be cancelled.
type CancelJobUseCase struct {
	jobRepo job.Repository
	logger  logger.Interface
}

func NewCancelJobUseCase(jobRepo job.Repository, logger logger.Interface) *CancelJobUseCase {
	return &CancelJobUseCase{jobRepo: jobRepo, logger: logger}
}

func (uc *CancelJobUseCase) Execute(ctx context.Context, jobID string) (*dto.JobDTO, error) {
	for {
		j, err := uc.jobRepo.GetByID(ctx, jobID)
		if err != nil {
			return nil, notFoundOr(err, jobID)
		}

		switch {
		case j.IsTerminal():
			return dto.ToJobDTO(j), nil
		case j.State() == job.StateRunning:
			uc.logger.Warnw("refusing to cancel running job", "job_id", jobID)
			return nil, sharedErrors.NewConflictError(job.ErrJobRunning.Error(), jobID)
		}

		swapped, err := uc.jobRepo.CompareAndSwapState(ctx, jobID, job.StateCreated, job.StateCancelled, "")
		if err != nil {
			uc.logger.Errorw("failed to cancel job", "job_id", jobID, "error", err)
			return nil, notFoundOr(err, jobID)
		}
		if !swapped {
			// claimed by a dispatcher in the meantime
			continue
		}

		uc.logger.Infow("job cancelled", "job_id", jobID)
		cancelled, err := uc.jobRepo.GetByID(ctx, jobID)
		if err != nil {
			// purged right after the swap
			return nil, notFoundOr(err, jobID)
		}
		return dto.ToJobDTO(cancelled), nil
	}
}

func notFoundOr(err error, jobID string) error {
	if errors.Is(err, job.ErrJobNotFound) {
		return sharedErrors.NewNotFoundError("job not found", jobID)
	}
	return err
}
