package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
)

func newOwner(t *testing.T, key string) *catalog.Owner {
	t.Helper()
	o, err := catalog.NewOwner(key, "")
	require.NoError(t, err)
	return o
}

func TestSubmitJobUseCase_Refresh(t *testing.T) {
	jobRepo := new(mockJobRepository)
	ownerRepo := new(mockOwnerRepository)
	notifier := new(mockNotifier)
	ctx := context.Background()

	ownerRepo.On("GetByKey", ctx, "acme").Return(newOwner(t, "acme"), nil)
	jobRepo.On("Create", ctx, mock.AnythingOfType("*job.Job")).Return(nil)
	notifier.On("JobSubmitted", ctx, mock.AnythingOfType("*job.Job")).Return()

	uc := NewSubmitJobUseCase(jobRepo, ownerRepo, new(mockConsumerRepository), newQuietLogger(), notifier)

	first, err := uc.Execute(ctx, SubmitJobCommand{OwnerKey: "acme", Type: job.TypeRefreshPools, Principal: "admin", Lazy: true})
	require.NoError(t, err)
	assert.Equal(t, string(job.StateCreated), first.State)
	assert.Equal(t, "admin", first.Principal)
	assert.Equal(t, "true", first.Data[job.DataKeyLazy])

	second, err := uc.Execute(ctx, SubmitJobCommand{OwnerKey: "acme", Type: job.TypeRefreshPools, Principal: "admin", Lazy: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "submissions are never deduplicated")

	jobRepo.AssertNumberOfCalls(t, "Create", 2)
	notifier.AssertNumberOfCalls(t, "JobSubmitted", 2)
}

func TestSubmitJobUseCase_Validation(t *testing.T) {
	ctx := context.Background()
	ownerRepo := new(mockOwnerRepository)
	ownerRepo.On("GetByKey", ctx, "unknown").Return(nil, catalog.ErrOwnerNotFound)
	uc := NewSubmitJobUseCase(new(mockJobRepository), ownerRepo, new(mockConsumerRepository), newQuietLogger())

	_, err := uc.Execute(ctx, SubmitJobCommand{Type: job.TypeRefreshPools})
	assert.True(t, sharedErrors.IsInvalidArgumentError(err))

	_, err = uc.Execute(ctx, SubmitJobCommand{OwnerKey: "acme", Type: "rebuild"})
	assert.True(t, sharedErrors.IsInvalidArgumentError(err))

	_, err = uc.Execute(ctx, SubmitJobCommand{OwnerKey: "unknown", Type: job.TypeRefreshPools})
	assert.True(t, sharedErrors.IsNotFoundError(err))
}

func TestSubmitJobUseCase_ConsumeProduct(t *testing.T) {
	ctx := context.Background()
	acme := newOwner(t, "acme")
	mine, err := consumer.NewConsumer(acme.ID(), "c1", consumer.TypeSystem, nil, nil)
	require.NoError(t, err)
	theirs, err := consumer.NewConsumer("own_other", "c2", consumer.TypeSystem, nil, nil)
	require.NoError(t, err)

	jobRepo := new(mockJobRepository)
	ownerRepo := new(mockOwnerRepository)
	consumerRepo := new(mockConsumerRepository)
	ownerRepo.On("GetByKey", ctx, "acme").Return(acme, nil)
	ownerRepo.On("GetByID", ctx, acme.ID()).Return(acme, nil)
	consumerRepo.On("GetConsumer", ctx, mine.UUID()).Return(mine, nil)
	consumerRepo.On("GetConsumer", ctx, theirs.UUID()).Return(theirs, nil)
	consumerRepo.On("GetConsumer", ctx, "missing").Return(nil, consumer.ErrConsumerNotFound)
	jobRepo.On("Create", ctx, mock.AnythingOfType("*job.Job")).Return(nil)

	uc := NewSubmitJobUseCase(jobRepo, ownerRepo, consumerRepo, newQuietLogger())

	got, err := uc.Execute(ctx, SubmitJobCommand{OwnerKey: "acme", Type: job.TypeConsumeProduct, TargetID: mine.UUID()})
	require.NoError(t, err)
	assert.Equal(t, mine.UUID(), got.TargetID)

	_, err = uc.Execute(ctx, SubmitJobCommand{OwnerKey: "acme", Type: job.TypeConsumeProduct})
	assert.True(t, sharedErrors.IsInvalidArgumentError(err))

	_, err = uc.Execute(ctx, SubmitJobCommand{OwnerKey: "acme", Type: job.TypeConsumeProduct, TargetID: "missing"})
	assert.True(t, sharedErrors.IsNotFoundError(err))

	_, err = uc.Execute(ctx, SubmitJobCommand{OwnerKey: "acme", Type: job.TypeConsumeProduct, TargetID: theirs.UUID()})
	assert.True(t, sharedErrors.IsNotFoundError(err))

	inferred, err := uc.Execute(ctx, SubmitJobCommand{Type: job.TypeConsumeProduct, TargetID: mine.UUID()})
	require.NoError(t, err)
	assert.Equal(t, "acme", inferred.OwnerKey, "owner is taken from the consumer when no key is given")

	jobRepo.AssertNumberOfCalls(t, "Create", 2)
}
