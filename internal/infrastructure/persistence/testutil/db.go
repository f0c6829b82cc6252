// Package testutil opens throwaway SQLite databases for repository and service tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
)

// OpenSQLite opens an empty in-memory database pinned to a single connection,
// since every new connection to ":memory:" would see a different database.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewSQLiteDB opens an in-memory database with every model migrated.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := OpenSQLite(t)
	require.NoError(t, db.AutoMigrate(
		&models.OwnerModel{},
		&models.ProductModel{},
		&models.SubscriptionModel{},
		&models.PoolModel{},
		&models.EntitlementModel{},
		&models.ConsumerModel{},
		&models.GuestMappingModel{},
		&models.JobModel{},
	))
	return db
}
