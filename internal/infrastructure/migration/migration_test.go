package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/testutil"
	"github.com/orris-inc/poolkeeper/internal/shared/constants"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

var tables = []string{
	constants.TableOwners,
	constants.TableProducts,
	constants.TableSubscriptions,
	constants.TablePools,
	constants.TableEntitlements,
	constants.TableConsumers,
	constants.TableGuestMappings,
	constants.TableJobs,
}

func TestGooseStrategy_SQLite(t *testing.T) {
	db := testutil.OpenSQLite(t)
	strategy, err := NewGooseStrategy("sqlite", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", strategy.Dialect())

	require.NoError(t, strategy.Migrate(db))
	for _, table := range tables {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	version, err := strategy.GetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)

	t.Run("scripts match the models", func(t *testing.T) {
		// AutoMigrate on top of the scripted schema must not fail on type mismatches.
		require.NoError(t, db.AutoMigrate(AutoMigrateModels()...))
	})

	t.Run("migrating again is a no-op", func(t *testing.T) {
		require.NoError(t, strategy.Migrate(db))
	})

	t.Run("down removes the newest script", func(t *testing.T) {
		require.NoError(t, strategy.MigrateDown(db, 1))
		assert.False(t, db.Migrator().HasTable(constants.TableJobs))
		assert.True(t, db.Migrator().HasTable(constants.TablePools))

		version, err := strategy.GetVersion(db)
		require.NoError(t, err)
		assert.Equal(t, int64(3), version)
	})
}

func TestNewGooseStrategy_UnknownDriver(t *testing.T) {
	_, err := NewGooseStrategy("postgres", logger.Nop())
	assert.Error(t, err)
}

func TestManager_PicksStrategyByEnvironment(t *testing.T) {
	dev, err := NewManager(constants.EnvDevelopment, "sqlite", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "gorm_auto_migrate", dev.GetStrategy().GetName())

	prod, err := NewManager(constants.EnvProduction, "mysql", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "goose", prod.GetStrategy().GetName())

	db := testutil.OpenSQLite(t)
	require.NoError(t, dev.Migrate(db))
	for _, table := range tables {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
