package bookmarks

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akhmetov/librarian/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_bookmarks_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Bookmark{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestBook(t *testing.T, db *gorm.DB) *entities.Book {
	book := &entities.Book{
		Title:   "Test Book",
		Author:  "Test Author",
		TextRef: uuid.NewString() + ".json",
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestRepository_CreateAndList(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db)

	bookmark := &entities.Bookmark{BookID: book.ID, Title: "интересное место", Position: 33.5}
	require.NoError(t, repo.Create(bookmark))

	bookmarks, err := repo.ListByBook(book.ID)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "интересное место", bookmarks[0].Title)
	assert.Equal(t, 33.5, bookmarks[0].Position)
}

func TestRepository_CreateClampsPosition(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db)

	over := &entities.Bookmark{BookID: book.ID, Position: 150}
	require.NoError(t, repo.Create(over))
	assert.Equal(t, float64(100), over.Position)

	under := &entities.Bookmark{BookID: book.ID, Position: -3}
	require.NoError(t, repo.Create(under))
	assert.Equal(t, float64(0), under.Position)
}

func TestRepository_ListByBookScopesToBook(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := createTestBook(t, db)
	second := createTestBook(t, db)

	require.NoError(t, repo.Create(&entities.Bookmark{BookID: first.ID, Position: 10}))
	require.NoError(t, repo.Create(&entities.Bookmark{BookID: second.ID, Position: 20}))

	bookmarks, err := repo.ListByBook(first.ID)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, first.ID, bookmarks[0].BookID)
}

func TestRepository_Delete(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db)
	bookmark := &entities.Bookmark{BookID: book.ID, Position: 50}
	require.NoError(t, repo.Create(bookmark))

	require.NoError(t, repo.Delete(bookmark.ID))

	bookmarks, err := repo.ListByBook(book.ID)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)

	assert.ErrorIs(t, repo.Delete(bookmark.ID), ErrNotFound)
}
