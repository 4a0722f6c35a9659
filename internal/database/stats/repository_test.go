package stats

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akhmetov/librarian/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_stats_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.ReadingStat{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_AddSecondsAccumulates(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	day := time.Date(2025, 3, 15, 21, 30, 0, 0, time.UTC)

	require.NoError(t, repo.AddSeconds(day, 120))
	require.NoError(t, repo.AddSeconds(day, 60))

	total, err := repo.TotalSeconds()
	require.NoError(t, err)
	assert.Equal(t, int64(180), total)
}

func TestRepository_AddSecondsSeparateDays(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddSeconds(time.Now(), 100))
	require.NoError(t, repo.AddSeconds(time.Now().AddDate(0, 0, -1), 200))

	stats, err := repo.Recent(7)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	// oldest first
	assert.Equal(t, 200, stats[0].SecondsRead)
	assert.Equal(t, 100, stats[1].SecondsRead)
}

func TestRepository_AddSecondsIgnoresNonPositive(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddSeconds(time.Now(), 0))
	require.NoError(t, repo.AddSeconds(time.Now(), -5))

	total, err := repo.TotalSeconds()
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRepository_TotalSecondsEmpty(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	total, err := repo.TotalSeconds()
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRepository_RecentWindow(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddSeconds(time.Now(), 50))
	require.NoError(t, repo.AddSeconds(time.Now().AddDate(0, 0, -40), 999))

	stats, err := repo.Recent(7)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 50, stats[0].SecondsRead)
}
