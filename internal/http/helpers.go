package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akhmetov/librarian/internal/archive"
	"github.com/akhmetov/librarian/internal/catalog"
	"github.com/akhmetov/librarian/internal/database/books"
	"github.com/akhmetov/librarian/internal/fb2"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondPipelineError translates acquisition pipeline errors into status
// codes. The pipeline classifies, this layer renders: transient kinds get
// gateway-style statuses and a retryable flag, permanent document problems
// are unprocessable input, everything else is internal.
func respondPipelineError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "catalog unavailable", Retryable: true})
	case errors.Is(err, archive.ErrNetwork):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "download failed", Retryable: true})
	case errors.Is(err, archive.ErrBadArchive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "malformed book archive"})
	case errors.Is(err, fb2.ErrBadDocument):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "malformed book document"})
	case errors.Is(err, fb2.ErrNoContent):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "book has no readable content"})
	case errors.Is(err, books.ErrNotFound):
		respondNotFound(c, "book")
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseUUIDParam extracts and validates a UUID from URL parameters.
// Responds with a 400 error and returns false on bad input.
func parseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return uuid.Nil, false
	}
	return id, true
}
