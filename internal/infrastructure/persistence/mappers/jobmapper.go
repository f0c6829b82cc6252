package mappers

import (
	"fmt"

	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/mapper"
)

type JobMapper interface {
	ToEntity(model *models.JobModel) (*job.Job, error)
	ToModel(entity *job.Job) (*models.JobModel, error)
	ToEntities(models []*models.JobModel) ([]*job.Job, error)
}

type JobMapperImpl struct{}

func NewJobMapper() JobMapper {
	return &JobMapperImpl{}
}

func (m *JobMapperImpl) ToEntity(model *models.JobModel) (*job.Job, error) {
	if model == nil {
		return nil, nil
	}
	data, err := unmarshalStringMap(model.Data)
	if err != nil {
		return nil, err
	}

	entity, err := job.ReconstructJob(
		model.ID,
		model.OwnerKey,
		job.Type(model.Type),
		job.State(model.State),
		model.Principal,
		model.TargetID,
		data,
		model.Result,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
		model.StartedAt,
		model.FinishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct job entity: %w", err)
	}
	return entity, nil
}

func (m *JobMapperImpl) ToModel(entity *job.Job) (*models.JobModel, error) {
	if entity == nil {
		return nil, nil
	}
	data, err := marshalJSON(entity.Data())
	if err != nil {
		return nil, err
	}
	return &models.JobModel{
		ID:         entity.ID(),
		OwnerKey:   entity.OwnerKey(),
		Type:       string(entity.Type()),
		State:      string(entity.State()),
		Principal:  entity.Principal(),
		TargetID:   entity.TargetID(),
		Data:       data,
		Result:     entity.Result(),
		CreatedAt:  entity.CreatedAt(),
		UpdatedAt:  entity.UpdatedAt(),
		StartedAt:  entity.StartedAt(),
		FinishedAt: entity.FinishedAt(),
	}, nil
}

func (m *JobMapperImpl) ToEntities(modelList []*models.JobModel) ([]*job.Job, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.JobModel) string { return model.ID })
}
