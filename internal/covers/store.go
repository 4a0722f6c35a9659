// Package covers stores embedded cover images extracted during acquisition.
package covers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store handles local storage of book cover images.
type Store struct {
	dir string
}

// NewStore creates a cover store at the specified directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes a cover blob for a book and returns an opaque reference.
// The extension is sniffed from the image bytes.
func (s *Store) Save(bookID uuid.UUID, blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", fmt.Errorf("empty cover blob for book %s", bookID)
	}

	ref := fmt.Sprintf("cover_%s%s", bookID, extensionFor(blob))

	tmpFile, err := os.CreateTemp(s.dir, "cover_tmp_")
	if err != nil {
		return "", err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(blob); err != nil {
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, ref)); err != nil {
		return "", err
	}
	return ref, nil
}

// Path resolves a cover reference to a file path, or empty when missing.
func (s *Store) Path(ref string) string {
	if ref == "" {
		return ""
	}
	p := filepath.Join(s.dir, filepath.Base(ref))
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// Delete removes the stored cover. Deleting a missing reference is not an
// error.
func (s *Store) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// extensionFor picks a file extension based on the sniffed content type.
func extensionFor(blob []byte) string {
	switch http.DetectContentType(blob) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
