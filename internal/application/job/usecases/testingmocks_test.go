package usecases

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

type mockJobRepository struct {
	mock.Mock
}

func (m *mockJobRepository) Create(ctx context.Context, j *job.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *mockJobRepository) GetByID(ctx context.Context, jobID string) (*job.Job, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *mockJobRepository) ListByOwnerKey(ctx context.Context, ownerKey string) ([]*job.Job, error) {
	args := m.Called(ctx, ownerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*job.Job), args.Error(1)
}

func (m *mockJobRepository) ClaimNext(ctx context.Context, now time.Time) (*job.Job, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *mockJobRepository) CompareAndSwapState(ctx context.Context, jobID string, from, to job.State, result string) (bool, error) {
	args := m.Called(ctx, jobID, from, to, result)
	return args.Bool(0), args.Error(1)
}

func (m *mockJobRepository) PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockOwnerRepository struct {
	mock.Mock
}

func (m *mockOwnerRepository) Create(ctx context.Context, o *catalog.Owner) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOwnerRepository) GetByKey(ctx context.Context, key string) (*catalog.Owner, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Owner), args.Error(1)
}

func (m *mockOwnerRepository) GetByID(ctx context.Context, ownerID string) (*catalog.Owner, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Owner), args.Error(1)
}

// mockConsumerRepository only answers GetConsumer; the use cases need nothing else.
type mockConsumerRepository struct {
	mock.Mock
	consumer.Repository
}

func (m *mockConsumerRepository) GetConsumer(ctx context.Context, consumerUUID string) (*consumer.Consumer, error) {
	args := m.Called(ctx, consumerUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consumer.Consumer), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) JobSubmitted(ctx context.Context, j *job.Job) {
	m.Called(ctx, j)
}

type mockSchedulerControl struct {
	mock.Mock
}

func (m *mockSchedulerControl) Enabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockSchedulerControl) SetEnabled(ctx context.Context, enabled bool) error {
	return m.Called(ctx, enabled).Error(0)
}

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, args ...any) { m.Called(msg, args) }
func (m *mockLogger) Info(msg string, args ...any)  { m.Called(msg, args) }
func (m *mockLogger) Warn(msg string, args ...any)  { m.Called(msg, args) }
func (m *mockLogger) Error(msg string, args ...any) { m.Called(msg, args) }
func (m *mockLogger) Fatal(msg string, args ...any) { m.Called(msg, args) }

func (m *mockLogger) With(args ...any) logger.Interface {
	m.Called(args)
	return m
}

func (m *mockLogger) Named(name string) logger.Interface {
	m.Called(name)
	return m
}

func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) { m.Called(msg, keysAndValues) }
func (m *mockLogger) Infow(msg string, keysAndValues ...interface{})  { m.Called(msg, keysAndValues) }
func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{})  { m.Called(msg, keysAndValues) }
func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) { m.Called(msg, keysAndValues) }
func (m *mockLogger) Fatalw(msg string, keysAndValues ...interface{}) { m.Called(msg, keysAndValues) }

// newQuietLogger accepts any log call.
func newQuietLogger() *mockLogger {
	l := new(mockLogger)
	for _, method := range []string{"Debugw", "Infow", "Warnw", "Errorw"} {
		l.On(method, mock.Anything, mock.Anything).Return()
	}
	return l
}
