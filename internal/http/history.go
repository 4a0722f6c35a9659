package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akhmetov/librarian/internal/entities"
)

// HistoryStore defines database operations for the search history.
type HistoryStore interface {
	List(limit int) ([]entities.SearchQuery, error)
	Clear() error
}

type HistoryController struct {
	store HistoryStore
}

func NewHistoryController(store HistoryStore) *HistoryController {
	return &HistoryController{store: store}
}

// ListHistory returns recent catalog searches.
// GET /api/search-history
func (hc *HistoryController) ListHistory(c *gin.Context) {
	queries, err := hc.store.List(50)
	if err != nil {
		respondInternalError(c, err, "list history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": queries})
}

// ClearHistory removes the entire search history.
// DELETE /api/search-history
func (hc *HistoryController) ClearHistory(c *gin.Context) {
	if err := hc.store.Clear(); err != nil {
		respondInternalError(c, err, "clear history")
		return
	}
	respondSuccess(c, "search history cleared")
}
