package worker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/poolkeeper/internal/application/job/usecases"
	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/config"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/testutil"
	sharedConfig "github.com/orris-inc/poolkeeper/internal/shared/config"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Redis: sharedConfig.RedisConfig{KeyPrefix: "pk-test"},
		Scheduler: sharedConfig.SchedulerConfig{
			EnabledOnStart: true,
			Workers:        2,
			PollInterval:   20 * time.Millisecond,
			JobTimeout:     5 * time.Second,
			Maintenance: sharedConfig.MaintenanceConfig{
				DevPoolInterval:  time.Hour,
				JobPurgeInterval: time.Hour,
				JobRetention:     24 * time.Hour,
			},
		},
		Reconcile: sharedConfig.ReconcileConfig{LockTTL: time.Minute},
	}
}

func TestWorker_RunsSubmittedRefresh(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	w, err := New(gdb, nil, testConfig(), logger.Nop())
	require.NoError(t, err)
	require.Len(t, w.SubmitNotifiers(), 1)

	ctx := context.Background()
	owner, err := catalog.NewOwner("acme", "Acme")
	require.NoError(t, err)
	require.NoError(t, w.Repos.Owners.Create(ctx, owner))
	product, err := catalog.NewProduct("RH00001", "Server", nil, []string{"rhel"})
	require.NoError(t, err)
	require.NoError(t, w.Repos.Products.Save(ctx, product))
	now := time.Now().UTC()
	sub, err := catalog.NewSubscription(owner.ID(), product.ID(), 5, now.Add(-time.Hour), now.AddDate(1, 0, 0))
	require.NoError(t, err)
	require.NoError(t, w.Repos.Subscriptions.Create(ctx, sub))

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- w.Run(runCtx) }()

	submit := usecases.NewSubmitJobUseCase(w.Repos.Jobs, w.Repos.Owners, w.Repos.Consumers, logger.Nop(), w.SubmitNotifiers()...)
	queued, err := submit.Execute(ctx, usecases.SubmitJobCommand{OwnerKey: "acme", Type: job.TypeRefreshPools, Principal: "test"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		j, err := w.Repos.Jobs.GetByID(ctx, queued.ID)
		return err == nil && j.State() == job.StateFinished
	}, 5*time.Second, 20*time.Millisecond)

	pools, err := w.Repos.Pools.ListByOwner(ctx, owner.ID())
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, int64(5), pools[0].Quantity())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.False(t, w.Maintenance.IsStarted())
}

func TestWorker_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	w, err := New(testutil.NewSQLiteDB(t), client, testConfig(), logger.Nop())
	require.NoError(t, err)
	assert.Len(t, w.SubmitNotifiers(), 2)

	enabled, err := w.Dispatcher.Enabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled, "shared flag defaults to enabled")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
