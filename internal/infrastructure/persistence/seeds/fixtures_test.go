package seeds

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/testutil"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/repository"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

const sampleFixtures = `
products:
  - id: RH00001
    name: Datacenter
    attributes:
      virt_limit: unlimited
    provided_products: [rhel]
owners:
  - key: acme
    display_name: Acme Corp
    subscriptions:
      - id: sub_fixture1
        product_id: RH00001
        quantity: 10
        start_date: 2026-01-01T00:00:00Z
        end_date: 2027-01-01T00:00:00Z
`

func TestLoad_Validation(t *testing.T) {
	_, err := Load(strings.NewReader(`
owners:
  - key: acme
    subscriptions:
      - product_id: RH00001
        quantity: 1
        start_date: 2027-01-01T00:00:00Z
        end_date: 2026-01-01T00:00:00Z
`))
	require.Error(t, err)
	assert.True(t, sharedErrors.IsInvalidArgumentError(err))

	_, err = Load(strings.NewReader("owners:\n  - key: acme\n    colour: red\n"))
	assert.Error(t, err, "unknown fields are rejected")

	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Owners)
}

func TestApply_IsRepeatable(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	log := logger.Nop()
	target := Target{
		Owners:        repository.NewOwnerRepository(gdb, log),
		Products:      repository.NewProductRepository(gdb, log),
		Subscriptions: repository.NewSubscriptionRepository(gdb, log),
	}
	ctx := context.Background()

	f, err := Load(strings.NewReader(sampleFixtures))
	require.NoError(t, err)

	first, err := Apply(ctx, target, f, log)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Products)
	assert.Equal(t, 1, first.OwnersCreated)
	assert.Equal(t, []string{"acme"}, first.OwnerKeys)

	f.Owners[0].Subscriptions[0].Quantity = 25
	second, err := Apply(ctx, target, f, log)
	require.NoError(t, err)
	assert.Equal(t, 0, second.OwnersCreated)

	owner, err := target.Owners.GetByKey(ctx, "acme")
	require.NoError(t, err)
	subs, err := target.Subscriptions.ListSubscriptions(ctx, owner.ID())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "sub_fixture1", subs[0].ID())
	assert.Equal(t, int64(25), subs[0].Quantity())

	product, err := target.Products.GetProduct(ctx, "RH00001")
	require.NoError(t, err)
	assert.Equal(t, []string{"rhel"}, product.ProvidedProductIDs())
}
