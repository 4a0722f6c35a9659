package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akhmetov/librarian/internal/library"
)

// CoversController serves stored book cover images.
type CoversController struct {
	service *library.Service
}

func NewCoversController(service *library.Service) *CoversController {
	return &CoversController{service: service}
}

// GetCover serves a book's cover image, or 404 when the book has none.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	path, err := cc.service.CoverPath(id)
	if err != nil {
		respondPipelineError(c, err, "get cover")
		return
	}
	if path == "" {
		c.Status(http.StatusNotFound)
		return
	}

	c.File(path)
}
