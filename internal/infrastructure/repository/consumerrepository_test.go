package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/testutil"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

func TestConsumerRepository_CreateAndGet(t *testing.T) {
	repo := NewConsumerRepository(testutil.NewSQLiteDB(t), logger.Nop())
	ctx := context.Background()

	c, err := consumer.NewConsumer("own_a", "guest-vm", consumer.TypeSystem,
		map[string]string{consumer.FactVirtUUID: "vm-1", consumer.FactVirtIsGuest: "true"},
		[]string{"69", "37060"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetConsumer(ctx, c.UUID())
	require.NoError(t, err)
	assert.Equal(t, "guest-vm", got.Name())
	assert.True(t, got.IsGuest())
	assert.Equal(t, "vm-1", got.VirtUUID())

	installed, err := repo.GetInstalledProducts(ctx, c.UUID())
	require.NoError(t, err)
	assert.Equal(t, []string{"37060", "69"}, installed)

	found, err := repo.FindByVirtUUID(ctx, "own_a", "vm-1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c.UUID(), found[0].UUID())

	other, err := repo.FindByVirtUUID(ctx, "own_b", "vm-1")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = repo.GetConsumer(ctx, "7b0c6f3a-6f0e-4c55-9d55-4fb5d6a5e9a1")
	assert.ErrorIs(t, err, consumer.ErrConsumerNotFound)
}

func TestConsumerRepository_GuestMappings(t *testing.T) {
	repo := NewConsumerRepository(testutil.NewSQLiteDB(t), logger.Nop())
	ctx := context.Background()

	newHost := func(name string) *consumer.Consumer {
		h, err := consumer.NewConsumer("own_a", name, consumer.TypeHypervisor, nil, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, h))
		return h
	}
	hostA := newHost("host-a")
	hostB := newHost("host-b")

	report := func(h *consumer.Consumer, guests ...string) {
		added, removed := h.SetGuestIDs(guests)
		require.NoError(t, repo.Update(ctx, h, added, removed, time.Now().UTC()))
	}

	report(hostA, "g1", "g2")
	report(hostB, "g1")

	t.Run("most recent host first", func(t *testing.T) {
		mappings, err := repo.ListMappingsForGuest(ctx, "own_a", "g1")
		require.NoError(t, err)
		require.Len(t, mappings, 2)
		assert.Equal(t, hostB.UUID(), mappings[0].HostUUID)
		assert.Equal(t, hostA.UUID(), mappings[1].HostUUID)
		assert.Greater(t, mappings[0].Seq, mappings[1].Seq)
	})

	t.Run("re-reporting keeps the original row", func(t *testing.T) {
		before, err := repo.ListMappingsForGuest(ctx, "own_a", "g2")
		require.NoError(t, err)
		require.Len(t, before, 1)

		report(hostA, "g2", "g1")

		after, err := repo.ListMappingsForGuest(ctx, "own_a", "g2")
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, before[0].Seq, after[0].Seq)
	})

	t.Run("dropping a guest removes its mapping", func(t *testing.T) {
		report(hostB)

		mappings, err := repo.ListMappingsForGuest(ctx, "own_a", "g1")
		require.NoError(t, err)
		require.Len(t, mappings, 1)
		assert.Equal(t, hostA.UUID(), mappings[0].HostUUID)

		guests, err := repo.GetGuestIDs(ctx, hostB.UUID())
		require.NoError(t, err)
		assert.Empty(t, guests)
	})

	t.Run("stale copy is rejected", func(t *testing.T) {
		stale, err := repo.GetConsumer(ctx, hostA.UUID())
		require.NoError(t, err)

		report(hostA, "g3")

		added, removed := stale.SetGuestIDs([]string{"g4"})
		err = repo.Update(ctx, stale, added, removed, time.Now().UTC())
		assert.ErrorIs(t, err, consumer.ErrVersionConflict)

		guests, err := repo.GetGuestIDs(ctx, hostA.UUID())
		require.NoError(t, err)
		assert.Equal(t, []string{"g3"}, guests)
	})
}
