// Package textstore persists canonical book text independently of the
// original document bytes.
package textstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound indicates the reference does not resolve to stored text.
var ErrNotFound = errors.New("textstore: text not found")

// Store keeps one file per book, holding the ordered section texts as JSON.
// Writes go through a temp file and an atomic rename, so a reference either
// resolves to the complete text or to nothing; replacing a book's text is a
// full replace, never a merge.
type Store struct {
	dir string
}

// NewStore creates a text store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create text dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

type payload struct {
	Sections []string `json:"sections"`
}

// Save persists the ordered section texts for a book and returns an opaque
// reference for later loading. Sections must be non-empty: committed books
// always have readable text.
func (s *Store) Save(bookID uuid.UUID, sections []string) (string, error) {
	if len(sections) == 0 {
		return "", fmt.Errorf("refusing to store empty text for book %s", bookID)
	}

	data, err := json.Marshal(payload{Sections: sections})
	if err != nil {
		return "", fmt.Errorf("encode text: %w", err)
	}

	ref := bookID.String() + ".json"

	tmpFile, err := os.CreateTemp(s.dir, "text_tmp_")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return "", fmt.Errorf("write text: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("flush text: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, ref)); err != nil {
		return "", fmt.Errorf("commit text: %w", err)
	}
	return ref, nil
}

// Load resolves a reference to the stored section texts, byte-for-byte as
// saved.
func (s *Store) Load(ref string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("read text: %w", err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode text %s: %w", ref, err)
	}
	return p.Sections, nil
}

// Delete removes the stored text. Deleting a missing reference is not an
// error.
func (s *Store) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete text: %w", err)
	}
	return nil
}
