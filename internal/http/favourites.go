package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akhmetov/librarian/internal/entities"
)

// FavouritesStore defines database operations for favorites and ratings.
type FavouritesStore interface {
	SetFavorite(id uuid.UUID, favorite bool) error
	SetRating(id uuid.UUID, rating *int) error
	ListFavorites() ([]entities.Book, error)
	GetByID(id uuid.UUID) (*entities.Book, error)
}

type FavouritesController struct {
	store FavouritesStore
}

func NewFavouritesController(store FavouritesStore) *FavouritesController {
	return &FavouritesController{store: store}
}

// AddFavourite marks a book as favorite.
// POST /api/books/:id/favourite
func (fc *FavouritesController) AddFavourite(c *gin.Context) {
	fc.setFavourite(c, true, "favourite added")
}

// RemoveFavourite removes a book from favorites.
// DELETE /api/books/:id/favourite
func (fc *FavouritesController) RemoveFavourite(c *gin.Context) {
	fc.setFavourite(c, false, "favourite removed")
}

func (fc *FavouritesController) setFavourite(c *gin.Context, favorite bool, message string) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := fc.store.SetFavorite(id, favorite); err != nil {
		respondPipelineError(c, err, "set favourite")
		return
	}
	respondSuccess(c, message)
}

// ListFavourites returns all favorite books.
// GET /api/books/favourites
func (fc *FavouritesController) ListFavourites(c *gin.Context) {
	booksList, err := fc.store.ListFavorites()
	if err != nil {
		respondInternalError(c, err, "list favourites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": booksList})
}

// RatingRequest carries a 1-5 book rating; null clears it.
type RatingRequest struct {
	Rating *int `json:"rating"`
}

// SetRating sets or clears a book's rating.
// PUT /api/books/:id/rating
func (fc *FavouritesController) SetRating(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid rating payload")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		respondBadRequest(c, "rating must be between 1 and 5")
		return
	}

	if err := fc.store.SetRating(id, req.Rating); err != nil {
		respondPipelineError(c, err, "set rating")
		return
	}

	book, err := fc.store.GetByID(id)
	if err != nil {
		respondSuccess(c, "rating updated")
		return
	}
	c.JSON(http.StatusOK, book)
}
