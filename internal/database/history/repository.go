// Package history provides database operations for the search history.
package history

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/akhmetov/librarian/internal/entities"
)

// Repository handles search history database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new history repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record stores a search query. Blank queries are ignored.
func (r *Repository) Record(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return r.db.Create(&entities.SearchQuery{Query: query}).Error
}

// List returns the most recent queries, newest first.
func (r *Repository) List(limit int) ([]entities.SearchQuery, error) {
	if limit <= 0 {
		limit = 50
	}
	var queries []entities.SearchQuery
	err := r.db.Order("created_at DESC").Limit(limit).Find(&queries).Error
	return queries, err
}

// Clear removes the entire search history.
func (r *Repository) Clear() error {
	return r.db.Where("1 = 1").Delete(&entities.SearchQuery{}).Error
}

// TrimOlderThan removes history entries created before the cutoff and
// returns how many were removed.
func (r *Repository) TrimOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.SearchQuery{})
	return result.RowsAffected, result.Error
}
