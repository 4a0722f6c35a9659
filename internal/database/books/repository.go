// Package books provides database operations for library book records.
package books

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akhmetov/librarian/internal/entities"
)

// ErrNotFound indicates no book exists with the given identifier.
var ErrNotFound = errors.New("books: book not found")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a fully acquired book record.
func (r *Repository) Create(book *entities.Book) error {
	if book.TextRef == "" {
		return fmt.Errorf("refusing to create book %q without stored text", book.Title)
	}
	return r.db.Create(book).Error
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(id uuid.UUID) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByExternalID retrieves a book by its catalog identifier.
func (r *Repository) GetByExternalID(externalID string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, "external_id = ?", externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List returns all books, newest first.
func (r *Repository) List() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("created_at DESC").Find(&books).Error
	return books, err
}

// ListFavorites returns all favorite books, newest first.
func (r *Repository) ListFavorites() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("is_favorite = ?", true).Order("created_at DESC").Find(&books).Error
	return books, err
}

// LastRead returns the most recently read book, or ErrNotFound when nothing
// has been read yet.
func (r *Repository) LastRead() (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("last_read_at IS NOT NULL").Order("last_read_at DESC").First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Search finds books by title or author (case-insensitive partial match).
func (r *Repository) Search(query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// UpdateProgress sets the reading progress and touches the last-read time.
// The caller is responsible for clamping percent into [0,100].
func (r *Repository) UpdateProgress(id uuid.UUID, percent int) error {
	now := time.Now()
	result := r.db.Model(&entities.Book{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"progress_percent": percent,
			"last_read_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFavorite updates the favorite flag.
func (r *Repository) SetFavorite(id uuid.UUID, favorite bool) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ?", id).
		Update("is_favorite", favorite)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRating updates the 1-5 rating. A nil rating clears it.
func (r *Repository) SetRating(id uuid.UUID, rating *int) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return fmt.Errorf("rating must be between 1 and 5, got %d", *rating)
	}
	result := r.db.Model(&entities.Book{}).
		Where("id = ?", id).
		Update("rating", rating)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a book record and its bookmarks permanently.
func (r *Repository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("book_id = ?", id).Delete(&entities.Bookmark{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", id).Delete(&entities.Book{}).Error
	})
}
