package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akhmetov/librarian/internal/library"
	"github.com/akhmetov/librarian/internal/reading"
)

// ReaderController serves book text and reading positions.
type ReaderController struct {
	service *library.Service
	tracker *reading.Tracker
}

func NewReaderController(service *library.Service, tracker *reading.Tracker) *ReaderController {
	return &ReaderController{service: service, tracker: tracker}
}

// GetText returns the canonical section texts for a book.
// GET /api/books/:id/text
func (rc *ReaderController) GetText(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	sections, err := rc.service.Text(id)
	if err != nil {
		respondPipelineError(c, err, "get text")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// GetPosition resolves a progress percentage against the book's current
// text. Without an explicit percent query the stored progress is used.
// GET /api/books/:id/position?percent=
func (rc *ReaderController) GetPosition(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var pos reading.Position
	var err error
	if p := c.Query("percent"); p != "" {
		percent, convErr := strconv.Atoi(p)
		if convErr != nil {
			respondBadRequest(c, "invalid percent")
			return
		}
		pos, err = rc.service.ResolvePosition(id, percent)
	} else {
		pos, err = rc.service.Position(id)
	}
	if err != nil {
		if errors.Is(err, reading.ErrNoSections) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "book has no readable content"})
			return
		}
		respondPipelineError(c, err, "resolve position")
		return
	}
	c.JSON(http.StatusOK, pos)
}

// UpdateProgressRequest carries a new progress percentage.
type UpdateProgressRequest struct {
	Percent int `json:"percent"`
}

// UpdateProgress records reading progress for a book. Out-of-range values
// are clamped, not rejected.
// PUT /api/books/:id/progress
func (rc *ReaderController) UpdateProgress(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "percent is required")
		return
	}

	if err := rc.tracker.RecordProgress(id, req.Percent); err != nil {
		respondPipelineError(c, err, "update progress")
		return
	}
	c.Status(http.StatusNoContent)
}
