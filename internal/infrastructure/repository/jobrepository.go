package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/db"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// claimAttempts bounds how often ClaimNext retries after losing a race for the
// oldest CREATED job to another dispatcher.
const claimAttempts = 5

type JobRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.JobMapper
	logger logger.Interface
}

func NewJobRepository(db *gorm.DB, logger logger.Interface) job.Repository {
	return &JobRepositoryImpl{
		db:     db,
		mapper: mappers.NewJobMapper(),
		logger: logger,
	}
}

func (r *JobRepositoryImpl) Create(ctx context.Context, j *job.Job) error {
	model, err := r.mapper.ToModel(j)
	if err != nil {
		r.logger.Errorw("failed to map job entity to model", "error", err)
		return fmt.Errorf("failed to map job entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create job", "id", model.ID, "error", err)
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *JobRepositoryImpl) GetByID(ctx context.Context, jobID string) (*job.Job, error) {
	var model models.JobModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", jobID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, job.ErrJobNotFound
		}
		r.logger.Errorw("failed to get job by ID", "id", jobID, "error", err)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map job model to entity", "id", jobID, "error", err)
		return nil, fmt.Errorf("failed to map job: %w", err)
	}
	return entity, nil
}

func (r *JobRepositoryImpl) ListByOwnerKey(ctx context.Context, ownerKey string) ([]*job.Job, error) {
	var modelList []*models.JobModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("owner_key = ?", ownerKey).
		Order("created_at ASC, id ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list jobs", "owner_key", ownerKey, "error", err)
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, fmt.Errorf("failed to map jobs: %w", err)
	}
	return entities, nil
}

// ClaimNext picks the oldest CREATED job and promotes it with a conditional
// update, so a job cancelled in between is never started.
func (r *JobRepositoryImpl) ClaimNext(ctx context.Context, now time.Time) (*job.Job, error) {
	q := db.GetTxFromContext(ctx, r.db)

	for range claimAttempts {
		var candidate models.JobModel
		err := q.Where("state = ?", string(job.StateCreated)).
			Order("created_at ASC, id ASC").
			First(&candidate).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			r.logger.Errorw("failed to find next job", "error", err)
			return nil, fmt.Errorf("failed to find next job: %w", err)
		}

		result := q.Model(&models.JobModel{}).
			Where("id = ? AND state = ?", candidate.ID, string(job.StateCreated)).
			Updates(map[string]any{
				"state":      string(job.StateRunning),
				"started_at": now,
				"updated_at": now,
			})
		if result.Error != nil {
			r.logger.Errorw("failed to claim job", "id", candidate.ID, "error", result.Error)
			return nil, fmt.Errorf("failed to claim job: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return r.GetByID(ctx, candidate.ID)
		}
	}

	r.logger.Warnw("gave up claiming a job after repeated races", "attempts", claimAttempts)
	return nil, nil
}

func (r *JobRepositoryImpl) CompareAndSwapState(ctx context.Context, jobID string, from, to job.State, result string) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("%w: %s -> %s", job.ErrInvalidState, from, to)
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"state":      string(to),
		"result":     result,
		"updated_at": now,
	}
	if to == job.StateRunning {
		updates["started_at"] = now
	}
	if to.IsTerminal() {
		updates["finished_at"] = now
	}

	q := db.GetTxFromContext(ctx, r.db)
	res := q.Model(&models.JobModel{}).
		Where("id = ? AND state = ?", jobID, string(from)).
		Updates(updates)
	if res.Error != nil {
		r.logger.Errorw("failed to change job state", "id", jobID, "from", from, "to", to, "error", res.Error)
		return false, fmt.Errorf("failed to change job state: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var count int64
	if err := q.Model(&models.JobModel{}).Where("id = ?", jobID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check job: %w", err)
	}
	if count == 0 {
		return false, job.ErrJobNotFound
	}
	return false, nil
}

func (r *JobRepositoryImpl) PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	terminal := []string{string(job.StateCancelled), string(job.StateFailed), string(job.StateFinished)}
	res := db.GetTxFromContext(ctx, r.db).
		Where("state IN ? AND updated_at < ?", terminal, cutoff).
		Delete(&models.JobModel{})
	if res.Error != nil {
		r.logger.Errorw("failed to purge jobs", "cutoff", cutoff, "error", res.Error)
		return 0, fmt.Errorf("failed to purge jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
