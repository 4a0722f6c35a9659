// Package stats provides database operations for daily reading statistics.
package stats

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akhmetov/librarian/internal/entities"
)

const dateLayout = "2006-01-02"

// Repository handles reading statistics database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new stats repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddSeconds accumulates read time into the row for the given day,
// creating it on first use. One row per calendar day.
func (r *Repository) AddSeconds(day time.Time, seconds int) error {
	if seconds <= 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"seconds_read": gorm.Expr("seconds_read + ?", seconds),
			"updated_at":   time.Now(),
		}),
	}).Create(&entities.ReadingStat{
		Date:        day.Format(dateLayout),
		SecondsRead: seconds,
	}).Error
}

// Recent returns stats for the last n days, oldest first.
func (r *Repository) Recent(n int) ([]entities.ReadingStat, error) {
	if n <= 0 {
		n = 30
	}
	cutoff := time.Now().AddDate(0, 0, -n).Format(dateLayout)
	var stats []entities.ReadingStat
	err := r.db.Where("date >= ?", cutoff).Order("date ASC").Find(&stats).Error
	return stats, err
}

// TotalSeconds returns the all-time reading total.
func (r *Repository) TotalSeconds() (int64, error) {
	var total *int64
	err := r.db.Model(&entities.ReadingStat{}).
		Select("SUM(seconds_read)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
