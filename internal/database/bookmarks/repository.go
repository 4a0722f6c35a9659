// Package bookmarks provides database operations for reader bookmarks.
package bookmarks

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akhmetov/librarian/internal/entities"
)

// ErrNotFound indicates no bookmark exists with the given identifier.
var ErrNotFound = errors.New("bookmarks: bookmark not found")

// Repository handles all bookmark database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bookmarks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a bookmark. The position is a percentage and is clamped
// into [0,100].
func (r *Repository) Create(bookmark *entities.Bookmark) error {
	if bookmark.Position < 0 {
		bookmark.Position = 0
	}
	if bookmark.Position > 100 {
		bookmark.Position = 100
	}
	return r.db.Create(bookmark).Error
}

// ListByBook returns all bookmarks for a book, newest first.
func (r *Repository) ListByBook(bookID uuid.UUID) ([]entities.Bookmark, error) {
	var bookmarks []entities.Bookmark
	err := r.db.Where("book_id = ?", bookID).Order("created_at DESC").Find(&bookmarks).Error
	return bookmarks, err
}

// Delete removes a bookmark.
func (r *Repository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&entities.Bookmark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
