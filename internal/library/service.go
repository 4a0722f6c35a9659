// Package library orchestrates the book acquisition pipeline: catalog
// search, archive download, document parsing, and the all-or-nothing commit
// into the library store.
package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/akhmetov/librarian/internal/archive"
	"github.com/akhmetov/librarian/internal/catalog"
	"github.com/akhmetov/librarian/internal/database/books"
	"github.com/akhmetov/librarian/internal/entities"
	"github.com/akhmetov/librarian/internal/fb2"
	"github.com/akhmetov/librarian/internal/reading"
)

// CatalogSearcher queries the external catalog.
type CatalogSearcher interface {
	Search(ctx context.Context, query string) ([]catalog.Record, error)
}

// ArchiveFetcher downloads and unpacks a book archive.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, externalID string) (*archive.RawArchive, error)
}

// DocumentParser turns raw document bytes into canonical book content.
type DocumentParser interface {
	ParseWithFallback(data []byte, fallbackTitle, fallbackAuthor string) (*fb2.ParsedBook, error)
}

// TextStore persists canonical section text.
type TextStore interface {
	Save(bookID uuid.UUID, sections []string) (string, error)
	Load(ref string) ([]string, error)
	Delete(ref string) error
}

// CoverStore persists extracted cover images.
type CoverStore interface {
	Save(bookID uuid.UUID, blob []byte) (string, error)
	Path(ref string) string
	Delete(ref string) error
}

// BookStore persists committed book records.
type BookStore interface {
	Create(book *entities.Book) error
	GetByID(id uuid.UUID) (*entities.Book, error)
	GetByExternalID(externalID string) (*entities.Book, error)
	UpdateProgress(id uuid.UUID, percent int) error
	Delete(id uuid.UUID) error
}

// HistoryRecorder records catalog searches, best effort.
type HistoryRecorder interface {
	Record(query string) error
}

// Service is the acquisition pipeline entry point used by the HTTP layer
// and the CLI.
type Service struct {
	catalog CatalogSearcher
	fetcher ArchiveFetcher
	parser  DocumentParser
	texts   TextStore
	covers  CoverStore
	store   BookStore
	history HistoryRecorder

	// Concurrent acquisitions of the same catalog id share one download
	// instead of racing each other.
	inflight singleflight.Group

	fetchRetries int
	retryDelay   time.Duration
}

// NewService wires the pipeline components together. history may be nil.
func NewService(
	cat CatalogSearcher,
	fetcher ArchiveFetcher,
	parser DocumentParser,
	texts TextStore,
	covers CoverStore,
	store BookStore,
	history HistoryRecorder,
	fetchRetries int,
	retryDelay time.Duration,
) *Service {
	if fetchRetries < 0 {
		fetchRetries = 0
	}
	return &Service{
		catalog:      cat,
		fetcher:      fetcher,
		parser:       parser,
		texts:        texts,
		covers:       covers,
		store:        store,
		history:      history,
		fetchRetries: fetchRetries,
		retryDelay:   retryDelay,
	}
}

// Search queries the external catalog. The query is trimmed first; an empty
// query returns no results without touching the network. Successful searches
// are recorded in the history, best effort.
func (s *Service) Search(ctx context.Context, query string) ([]catalog.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []catalog.Record{}, nil
	}

	records, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.Record(query); err != nil {
			log.Printf("failed to record search query: %v", err)
		}
	}

	return records, nil
}

// Acquire runs the full pipeline for one catalog id: download, parse,
// store text and cover, commit the book record.
//
// The commit is all-or-nothing: if the record cannot be written, the text
// and cover blobs written moments before are removed again, so no committed
// book ever points at missing text and no blob outlives a failed
// acquisition. Transient download failures are retried a bounded number of
// times with backoff; permanent document or archive failures surface
// immediately.
//
// Concurrent calls for the same externalID are coalesced; if the book was
// already acquired earlier, the existing record is returned.
func (s *Service) Acquire(ctx context.Context, externalID, fallbackTitle, fallbackAuthor string) (*entities.Book, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, fmt.Errorf("external id is required")
	}

	result, err, _ := s.inflight.Do(externalID, func() (any, error) {
		if existing, err := s.store.GetByExternalID(externalID); err == nil {
			return existing, nil
		} else if !errors.Is(err, books.ErrNotFound) {
			return nil, fmt.Errorf("check existing book: %w", err)
		}
		return s.acquire(ctx, externalID, fallbackTitle, fallbackAuthor)
	})
	if err != nil {
		return nil, err
	}
	return result.(*entities.Book), nil
}

func (s *Service) acquire(ctx context.Context, externalID, fallbackTitle, fallbackAuthor string) (*entities.Book, error) {
	raw, err := s.fetchWithRetry(ctx, externalID)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.ParseWithFallback(raw.Data, fallbackTitle, fallbackAuthor)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		ID:         uuid.New(),
		Title:      parsed.Title,
		Author:     parsed.Author,
		ExternalID: &externalID,
	}

	textRef, err := s.texts.Save(book.ID, parsed.Sections)
	if err != nil {
		return nil, fmt.Errorf("store text: %w", err)
	}
	book.TextRef = textRef

	if len(parsed.Cover) > 0 {
		coverRef, err := s.covers.Save(book.ID, parsed.Cover)
		if err != nil {
			s.discard(textRef, "")
			return nil, fmt.Errorf("store cover: %w", err)
		}
		book.CoverRef = coverRef
	}

	if err := s.store.Create(book); err != nil {
		s.discard(book.TextRef, book.CoverRef)
		return nil, fmt.Errorf("commit book: %w", err)
	}

	log.Printf("Acquired book %q by %s (catalog id %s, %d sections)",
		book.Title, book.Author, externalID, len(parsed.Sections))

	return book, nil
}

// fetchWithRetry retries transient download failures with linear backoff.
// Permanent failures and context cancellation abort immediately.
func (s *Service) fetchWithRetry(ctx context.Context, externalID string) (*archive.RawArchive, error) {
	var lastErr error
	for attempt := 0; attempt <= s.fetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", archive.ErrNetwork, ctx.Err())
			case <-time.After(s.retryDelay * time.Duration(attempt)):
			}
			log.Printf("Retrying download of %s (attempt %d/%d)", externalID, attempt+1, s.fetchRetries+1)
		}

		raw, err := s.fetcher.Fetch(ctx, externalID)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, archive.ErrNetwork) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// discard removes blobs written during a failed acquisition.
func (s *Service) discard(textRef, coverRef string) {
	if err := s.texts.Delete(textRef); err != nil {
		log.Printf("failed to discard text %s: %v", textRef, err)
	}
	if coverRef != "" {
		if err := s.covers.Delete(coverRef); err != nil {
			log.Printf("failed to discard cover %s: %v", coverRef, err)
		}
	}
}

// Text returns the stored canonical text for a committed book.
func (s *Service) Text(bookID uuid.UUID) ([]string, error) {
	book, err := s.store.GetByID(bookID)
	if err != nil {
		return nil, err
	}
	return s.texts.Load(book.TextRef)
}

// ResolvePosition maps a progress percentage to a resumable position within
// the book's current stored text.
func (s *Service) ResolvePosition(bookID uuid.UUID, percent int) (reading.Position, error) {
	sections, err := s.Text(bookID)
	if err != nil {
		return reading.Position{}, err
	}
	return reading.ResolvePosition(percent, sections)
}

// Position resolves the book's persisted progress percentage against its
// current text. Used to resume a reading session.
func (s *Service) Position(bookID uuid.UUID) (reading.Position, error) {
	book, err := s.store.GetByID(bookID)
	if err != nil {
		return reading.Position{}, err
	}
	sections, err := s.texts.Load(book.TextRef)
	if err != nil {
		return reading.Position{}, err
	}
	return reading.ResolvePosition(book.ProgressPercent, sections)
}

// UpdateProgress clamps and persists a reading progress percentage and
// touches the book's last-read time.
func (s *Service) UpdateProgress(bookID uuid.UUID, percent int) error {
	return s.store.UpdateProgress(bookID, reading.Clamp(percent))
}

// CoverPath resolves the stored cover for a book, or empty when it has none.
func (s *Service) CoverPath(bookID uuid.UUID) (string, error) {
	book, err := s.store.GetByID(bookID)
	if err != nil {
		return "", err
	}
	return s.covers.Path(book.CoverRef), nil
}

// Delete removes a book record together with its stored text and cover.
func (s *Service) Delete(bookID uuid.UUID) error {
	book, err := s.store.GetByID(bookID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(bookID); err != nil {
		return err
	}
	// Blob removal after the record is gone: a failure here leaves an
	// unreferenced file at worst, never a record pointing at missing text.
	s.discard(book.TextRef, book.CoverRef)
	return nil
}

// Retryable reports whether an acquisition error is transient. Transient
// errors are safe to retry with backoff; everything else is permanent and
// must surface to the user unchanged.
func Retryable(err error) bool {
	return errors.Is(err, archive.ErrNetwork) || errors.Is(err, catalog.ErrUnavailable)
}
