package db

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDbDao 每個測試一個獨立的 sqlite 檔案
func newTestDbDao(t *testing.T) *DbDao {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ordertracker.db")
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	dao := NewDbDao(conn)
	require.NoError(t, dao.InitMigrate())
	t.Cleanup(func() {
		_ = dao.Close()
	})
	return dao
}
