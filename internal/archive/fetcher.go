// Package archive downloads book archives from the catalog and unpacks
// the outer container down to the raw document bytes.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/akhmetov/librarian/internal/utils"
)

var (
	// ErrNetwork indicates a transient transport failure (timeout, refused
	// connection, bad status). Callers may retry with backoff.
	ErrNetwork = errors.New("archive: download failed")

	// ErrBadArchive indicates the payload is not a usable archive: a
	// container with zero or more than one inner file, or one that cannot
	// be read. Permanent, not retryable.
	ErrBadArchive = errors.New("archive: malformed archive")
)

// DefaultTimeout bounds a single download request.
const DefaultTimeout = 30 * time.Second

const userAgent = "Librarian/1.0 (personal library)"

// maxArchiveSize caps a single download. The catalog serves individual
// books, anything larger is garbage.
const maxArchiveSize = 100 << 20

// RawArchive holds the unpacked document bytes. Transient: it exists only
// between fetch and parse and is never persisted.
type RawArchive struct {
	Data              []byte
	SuggestedFilename string
}

// Fetcher downloads a book archive identified by its catalog id.
//
// The download is streamed into a private temporary file which is removed
// on every exit path, so repeated failures cannot accumulate disk usage.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	tempDir    string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout overrides the download timeout. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.httpClient.Timeout = d
	}
}

// NewFetcher creates a Fetcher downloading from the given catalog base URL
// and staging files under tempDir.
func NewFetcher(baseURL, tempDir string, opts ...Option) (*Fetcher, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	f := &Fetcher{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tempDir:    tempDir,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch downloads the document for externalID, unpacking a single-entry ZIP
// container when the catalog serves one. Cancelling ctx aborts the download;
// the temporary file is removed regardless of how Fetch exits.
func (f *Fetcher) Fetch(ctx context.Context, externalID string) (*RawArchive, error) {
	downloadURL := fmt.Sprintf("%s/b/%s/fb2", f.baseURL, externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrNetwork, resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(f.tempDir, "download_*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxArchiveSize)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("flush temp file: %w", err)
	}

	name := suggestedFilename(resp.Header.Get("Content-Disposition"), externalID)

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read temp file: %w", err)
	}

	if isZip(data) {
		return unpackSingle(data)
	}

	return &RawArchive{Data: data, SuggestedFilename: name}, nil
}

// isZip reports whether data starts with a ZIP local-file signature.
func isZip(data []byte) bool {
	return len(data) >= 4 && bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// unpackSingle extracts the single file of a container archive. Zero entries
// or more than one entry is a malformed container.
func unpackSingle(data []byte) (*RawArchive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	var inner *zip.File
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		if inner != nil {
			return nil, fmt.Errorf("%w: container holds more than one file", ErrBadArchive)
		}
		inner = zf
	}
	if inner == nil {
		return nil, fmt.Errorf("%w: container is empty", ErrBadArchive)
	}

	rc, err := inner.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, maxArchiveSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	return &RawArchive{Data: content, SuggestedFilename: path.Base(inner.Name)}, nil
}

// suggestedFilename derives a filename from the Content-Disposition header,
// falling back to the catalog id. Header values are untrusted and sanitized
// before use.
func suggestedFilename(disposition, externalID string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := utils.SanitizeFilename(path.Base(params["filename"])); name != "" && name != "." {
				return name
			}
		}
	}
	return externalID + ".fb2"
}
