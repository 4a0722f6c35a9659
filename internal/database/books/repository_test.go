package books

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akhmetov/librarian/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

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

func createTestBook(t *testing.T, repo *Repository, title, author, externalID string) *entities.Book {
	book := &entities.Book{
		Title:   title,
		Author:  author,
		TextRef: uuid.NewString() + ".json",
	}
	if externalID != "" {
		book.ExternalID = &externalID
	}
	err := repo.Create(book)
	require.NoError(t, err)
	return book
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Война и мир", "Толстой Л.Н.", "452142")

	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Война и мир", found.Title)
	assert.Equal(t, "Толстой Л.Н.", found.Author)
	require.NotNil(t, found.ExternalID)
	assert.Equal(t, "452142", *found.ExternalID)
	assert.Equal(t, 0, found.ProgressPercent)
}

func TestRepository_CreateRejectsMissingText(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Create(&entities.Book{Title: "No text"})
	assert.Error(t, err)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_GetByExternalID(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Анна Каренина", "Толстой Л.Н.", "98765")

	found, err := repo.GetByExternalID("98765")
	require.NoError(t, err)
	assert.Equal(t, book.ID, found.ID)

	_, err = repo.GetByExternalID("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Search(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, repo, "Война и мир", "Толстой Л.Н.", "")
	createTestBook(t, repo, "Преступление и наказание", "Достоевский Ф.М.", "")

	byTitle, err := repo.Search("война")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Война и мир", byTitle[0].Title)

	byAuthor, err := repo.Search("Достоевский")
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "Преступление и наказание", byAuthor[0].Title)

	nothing, err := repo.Search("чехов")
	require.NoError(t, err)
	assert.Empty(t, nothing)
}

func TestRepository_UpdateProgress(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Book", "Author", "")
	require.Nil(t, book.LastReadAt)

	err := repo.UpdateProgress(book.ID, 42)
	require.NoError(t, err)

	updated, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, updated.ProgressPercent)
	require.NotNil(t, updated.LastReadAt, "progress update must touch the last-read time")
	assert.WithinDuration(t, time.Now(), *updated.LastReadAt, 5*time.Second)
}

func TestRepository_UpdateProgress_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.UpdateProgress(uuid.New(), 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_LastRead(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.LastRead()
	assert.ErrorIs(t, err, ErrNotFound)

	first := createTestBook(t, repo, "First", "A", "")
	second := createTestBook(t, repo, "Second", "B", "")

	require.NoError(t, repo.UpdateProgress(first.ID, 10))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.UpdateProgress(second.ID, 20))

	lastRead, err := repo.LastRead()
	require.NoError(t, err)
	assert.Equal(t, second.ID, lastRead.ID)
}

func TestRepository_Favorites(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Fav", "A", "")
	createTestBook(t, repo, "Not fav", "B", "")

	require.NoError(t, repo.SetFavorite(book.ID, true))

	favorites, err := repo.ListFavorites()
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, book.ID, favorites[0].ID)

	require.NoError(t, repo.SetFavorite(book.ID, false))
	favorites, err = repo.ListFavorites()
	require.NoError(t, err)
	assert.Empty(t, favorites)

	assert.ErrorIs(t, repo.SetFavorite(uuid.New(), true), ErrNotFound)
}

func TestRepository_SetRating(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Rated", "A", "")

	five := 5
	require.NoError(t, repo.SetRating(book.ID, &five))
	updated, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 5, *updated.Rating)

	// clearing
	require.NoError(t, repo.SetRating(book.ID, nil))
	updated, err = repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Rating)

	// out of range
	zero, six := 0, 6
	assert.Error(t, repo.SetRating(book.ID, &zero))
	assert.Error(t, repo.SetRating(book.ID, &six))
}

func TestRepository_List(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, repo, "One", "A", "")
	createTestBook(t, repo, "Two", "B", "")

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepository_DeleteRemovesBookmarks(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Doomed", "A", "")
	bookmark := &entities.Bookmark{BookID: book.ID, Title: "middle", Position: 50}
	require.NoError(t, db.Create(bookmark).Error)

	require.NoError(t, repo.Delete(book.ID))

	_, err := repo.GetByID(book.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&entities.Bookmark{}).Where("book_id = ?", book.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
