package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akhmetov/librarian/internal/catalog"
	"github.com/akhmetov/librarian/internal/entities"
	"github.com/akhmetov/librarian/internal/library"
)

// BookLister provides read access to committed library books.
type BookLister interface {
	List() ([]entities.Book, error)
	ListFavorites() ([]entities.Book, error)
	LastRead() (*entities.Book, error)
	Search(query string) ([]entities.Book, error)
	GetByID(id uuid.UUID) (*entities.Book, error)
}

// LibraryController exposes the library and the acquisition pipeline.
type LibraryController struct {
	service *library.Service
	reader  BookLister
}

func NewLibraryController(service *library.Service, reader BookLister) *LibraryController {
	return &LibraryController{service: service, reader: reader}
}

// SearchResult combines local matches with catalog hits for one query.
type SearchResult struct {
	Books          []entities.Book  `json:"books"`
	CatalogResults []catalog.Record `json:"catalog_results"`
	CatalogError   string           `json:"catalog_error,omitempty"`
}

// ListBooks returns the library, filtered by an optional query. With a
// query the external catalog is searched as well; catalog unavailability
// degrades the response instead of failing it, matching the search page.
// GET /api/books?q=
func (lc *LibraryController) ListBooks(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	if query == "" {
		booksList, err := lc.reader.List()
		if err != nil {
			respondInternalError(c, err, "list books")
			return
		}
		c.JSON(http.StatusOK, SearchResult{Books: booksList, CatalogResults: []catalog.Record{}})
		return
	}

	local, err := lc.reader.Search(query)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}

	result := SearchResult{Books: local, CatalogResults: []catalog.Record{}}

	remote, err := lc.service.Search(c.Request.Context(), query)
	if err != nil {
		result.CatalogError = "catalog unavailable"
	} else {
		result.CatalogResults = remote
	}

	c.JSON(http.StatusOK, result)
}

// SearchCatalog searches only the external catalog.
// GET /api/catalog/search?q=
func (lc *LibraryController) SearchCatalog(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}

	records, err := lc.service.Search(c.Request.Context(), query)
	if err != nil {
		respondPipelineError(c, err, "catalog search")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": records})
}

// AcquireRequest identifies a catalog book to download. Title and author
// are optional fallbacks used when the document itself omits them.
type AcquireRequest struct {
	ExternalID string `json:"external_id" binding:"required"`
	Title      string `json:"title"`
	Author     string `json:"author"`
}

// AcquireBook downloads, parses and commits a catalog book.
// POST /api/books/acquire
func (lc *LibraryController) AcquireBook(c *gin.Context) {
	var req AcquireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "external_id is required")
		return
	}

	book, err := lc.service.Acquire(c.Request.Context(), req.ExternalID, req.Title, req.Author)
	if err != nil {
		respondPipelineError(c, err, "acquire book")
		return
	}
	respondCreated(c, book)
}

// GetBook returns a single book record.
// GET /api/books/:id
func (lc *LibraryController) GetBook(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	book, err := lc.reader.GetByID(id)
	if err != nil {
		respondPipelineError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// LastRead returns the most recently read book.
// GET /api/books/last-read
func (lc *LibraryController) LastRead(c *gin.Context) {
	book, err := lc.reader.LastRead()
	if err != nil {
		respondPipelineError(c, err, "last read")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book together with its stored text and cover.
// DELETE /api/books/:id
func (lc *LibraryController) DeleteBook(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := lc.service.Delete(id); err != nil {
		respondPipelineError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}
