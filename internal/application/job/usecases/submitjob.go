package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/orris-inc/poolkeeper/internal/application/job/dto"
	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// SubmitNotifier is told about every stored job, e.g. to wake dispatchers
type SubmitNotifier interface {
	JobSubmitted(ctx context.Context, j *job.Job)
}

type SubmitJobCommand struct {
	OwnerKey  string
	Type      job.Type
	Principal string
	TargetID  string
	Lazy      bool
}

// SubmitJobUseCase queues a new job. Identical submissions produce distinct jobs.
type SubmitJobUseCase struct {
	jobRepo      job.Repository
	ownerRepo    catalog.OwnerRepository
	consumerRepo consumer.Repository
	notifiers    []SubmitNotifier
	logger       logger.Interface
}

func NewSubmitJobUseCase(
	jobRepo job.Repository,
	ownerRepo catalog.OwnerRepository,
	consumerRepo consumer.Repository,
	logger logger.Interface,
	notifiers ...SubmitNotifier,
) *SubmitJobUseCase {
	return &SubmitJobUseCase{
		jobRepo:      jobRepo,
		ownerRepo:    ownerRepo,
		consumerRepo: consumerRepo,
		notifiers:    notifiers,
		logger:       logger,
	}
}

func (uc *SubmitJobUseCase) Execute(ctx context.Context, cmd SubmitJobCommand) (*dto.JobDTO, error) {
	uc.logger.Infow("executing submit job use case",
		"owner_key", cmd.OwnerKey,
		"type", cmd.Type,
		"principal", cmd.Principal,
	)

	if !cmd.Type.IsValid() {
		return nil, sharedErrors.NewInvalidArgumentError(fmt.Sprintf("unknown job type: %s", cmd.Type))
	}

	data := map[string]string{}
	var owner *catalog.Owner
	switch cmd.Type {
	case job.TypeRefreshPools:
		if cmd.OwnerKey == "" {
			return nil, sharedErrors.NewInvalidArgumentError("owner key is required")
		}
		o, err := uc.loadOwner(ctx, cmd.OwnerKey)
		if err != nil {
			return nil, err
		}
		owner = o
		data[job.DataKeyLazy] = strconv.FormatBool(cmd.Lazy)
	case job.TypeConsumeProduct:
		o, err := uc.consumerOwner(ctx, cmd.OwnerKey, cmd.TargetID)
		if err != nil {
			return nil, err
		}
		owner = o
	}

	j, err := job.NewJob(owner.Key(), cmd.Type, cmd.Principal, cmd.TargetID, data)
	if err != nil {
		return nil, sharedErrors.NewInvalidArgumentError(err.Error())
	}
	if err := uc.jobRepo.Create(ctx, j); err != nil {
		uc.logger.Errorw("failed to store job", "owner_key", owner.Key(), "error", err)
		return nil, err
	}

	for _, n := range uc.notifiers {
		n.JobSubmitted(ctx, j)
	}

	uc.logger.Infow("job submitted", "job_id", j.ID(), "owner_key", j.OwnerKey(), "type", j.Type())
	return dto.ToJobDTO(j), nil
}

func (uc *SubmitJobUseCase) loadOwner(ctx context.Context, ownerKey string) (*catalog.Owner, error) {
	owner, err := uc.ownerRepo.GetByKey(ctx, ownerKey)
	if err != nil {
		if errors.Is(err, catalog.ErrOwnerNotFound) {
			return nil, sharedErrors.NewNotFoundError("owner not found", ownerKey)
		}
		uc.logger.Errorw("failed to load owner", "owner_key", ownerKey, "error", err)
		return nil, err
	}
	return owner, nil
}

// consumerOwner resolves the owner of a consume_product target. An owner key,
// when given, must match the consumer's owner.
func (uc *SubmitJobUseCase) consumerOwner(ctx context.Context, ownerKey, consumerUUID string) (*catalog.Owner, error) {
	if consumerUUID == "" {
		return nil, sharedErrors.NewInvalidArgumentError("target consumer is required")
	}
	c, err := uc.consumerRepo.GetConsumer(ctx, consumerUUID)
	if err != nil {
		if errors.Is(err, consumer.ErrConsumerNotFound) {
			return nil, sharedErrors.NewNotFoundError("consumer not found", consumerUUID)
		}
		return nil, err
	}

	if ownerKey == "" {
		owner, err := uc.ownerRepo.GetByID(ctx, c.OwnerID())
		if err != nil {
			uc.logger.Errorw("failed to load consumer owner", "consumer_uuid", consumerUUID, "error", err)
			return nil, err
		}
		return owner, nil
	}

	owner, err := uc.loadOwner(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	if c.OwnerID() != owner.ID() {
		return nil, sharedErrors.NewNotFoundError("consumer not found", consumerUUID)
	}
	return owner, nil
}
