package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a committed library entry. A Book row only exists once acquisition
// has fully succeeded: TextRef always resolves to non-empty stored text.
type Book struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string    `gorm:"index;size:512" json:"title"`
	Author     string    `gorm:"index;size:256" json:"author"`
	ExternalID *string   `gorm:"index;size:100" json:"external_id,omitempty"` // catalog identifier, nil for manual imports
	TextRef    string    `gorm:"size:1024" json:"-"`
	CoverRef   string    `gorm:"size:1024" json:"-"`

	// ProgressPercent is always within [0,100]; writers clamp, never reject.
	ProgressPercent int        `gorm:"default:0" json:"progress_percent"`
	IsFavorite      bool       `gorm:"default:false" json:"is_favorite"`
	Rating          *int       `json:"rating,omitempty"` // 1-5
	LastReadAt      *time.Time `json:"last_read_at,omitempty"`

	Bookmarks []Bookmark `gorm:"foreignKey:BookID" json:"bookmarks,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Bookmark is a named position inside a book, stored as a percentage of the
// scroll position so it survives re-pagination.
type Bookmark struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookID   uuid.UUID `gorm:"type:uuid;index" json:"book_id"`
	Title    string    `gorm:"size:200" json:"title"`
	Position float64   `json:"position"` // percent, 0-100

	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// SearchQuery records a catalog search for the history view.
type SearchQuery struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Query     string    `gorm:"size:500" json:"query"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (s *SearchQuery) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ReadingStat accumulates seconds read per calendar day. One row per day.
type ReadingStat struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        string    `gorm:"uniqueIndex;size:10" json:"date"` // YYYY-MM-DD
	SecondsRead int       `gorm:"default:0" json:"seconds_read"`
	UpdatedAt   time.Time `json:"updated_at"`
}
