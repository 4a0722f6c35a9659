package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akhmetov/librarian/internal/entities"
)

// BookmarksStore defines database operations for bookmark management.
type BookmarksStore interface {
	Create(bookmark *entities.Bookmark) error
	ListByBook(bookID uuid.UUID) ([]entities.Bookmark, error)
	Delete(id uuid.UUID) error
}

type BookmarksController struct {
	store BookmarksStore
}

func NewBookmarksController(store BookmarksStore) *BookmarksController {
	return &BookmarksController{store: store}
}

// CreateBookmarkRequest names a position within a book.
type CreateBookmarkRequest struct {
	Title    string  `json:"title" binding:"required"`
	Position float64 `json:"position"`
}

// AddBookmark stores a bookmark for a book.
// POST /api/books/:id/bookmarks
func (bc *BookmarksController) AddBookmark(c *gin.Context) {
	bookID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	bookmark := &entities.Bookmark{
		BookID:   bookID,
		Title:    req.Title,
		Position: req.Position,
	}
	if err := bc.store.Create(bookmark); err != nil {
		respondInternalError(c, err, "add bookmark")
		return
	}
	respondCreated(c, bookmark)
}

// ListBookmarks returns all bookmarks for a book.
// GET /api/books/:id/bookmarks
func (bc *BookmarksController) ListBookmarks(c *gin.Context) {
	bookID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bookmarks, err := bc.store.ListByBook(bookID)
	if err != nil {
		respondInternalError(c, err, "list bookmarks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

// DeleteBookmark removes a bookmark.
// DELETE /api/bookmarks/:id
func (bc *BookmarksController) DeleteBookmark(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.Delete(id); err != nil {
		respondNotFound(c, "bookmark")
		return
	}
	respondSuccess(c, "bookmark deleted")
}
