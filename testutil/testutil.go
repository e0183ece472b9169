// Package testutil builds throwaway SQLite and Redis backends for package tests.
package testutil

import (
	"testing"

	"HospitalMS/cache"
	"HospitalMS/database"
	"HospitalMS/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestSymmetricKey is a 32 byte PASETO key for tests.
const TestSymmetricKey = "0123456789abcdef0123456789abcdef"

// NewDB opens a private in-memory SQLite database with the full schema and catalog.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(false))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCatalog(db, "", "", logger.Nop()))
	return db
}

// NewRedis starts a miniredis server and returns a client for it.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// NewCache returns a Cache backed by miniredis.
func NewCache(t testing.TB) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, client := NewRedis(t)
	c, err := cache.NewCache(client, logger.Nop())
	require.NoError(t, err)
	return c, mr
}
