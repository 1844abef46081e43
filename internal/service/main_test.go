package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/cache"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/repository/redis_repo"
	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testTokenKey = "12345678901234567890123456789012"

func newTestDbDao(t *testing.T) *db.DbDao {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "service.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	dao := db.NewDbDao(conn)
	require.NoError(t, dao.InitMigrate())
	t.Cleanup(func() { _ = dao.Close() })
	return dao
}

func newTestOrderCache(t *testing.T) (*redis_repo.OrderCacheRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.NewRedisClient(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })
	return redis_repo.NewOrderCacheRepo(
		cache.NewRedisCache(client, constants.OrderCachePrefix),
		cache.NewRedisCache(client, constants.UserOrdersCachePrefix),
		time.Hour,
	), mr
}
