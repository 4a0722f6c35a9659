// Package reading maps percentage reading progress onto resumable positions
// within stored book text.
package reading

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrNoSections indicates position resolution was attempted on a book with
// no stored text. Committed books always have text, so this is a caller
// precondition violation, not a transient condition.
var ErrNoSections = errors.New("reading: no sections to resolve against")

// Position is a resumable location: a section index and a character offset
// within that section. Derived, never stored; it is recomputed from the
// persisted percentage and the current text on every request.
type Position struct {
	Section int `json:"section"`
	Offset  int `json:"offset"`
}

// ResolvePosition maps a progress percentage onto a Position.
//
// The target is floor(total_chars * percent / 100) across the concatenated
// sections; the reported offset is the residual within the section the
// target falls in. 0 resolves to the start of the first section; 100
// resolves to the end of the last section (an end-of-book marker, not an
// out-of-range index). Percent values outside [0,100] are clamped.
func ResolvePosition(percent int, sections []string) (Position, error) {
	if len(sections) == 0 {
		return Position{}, ErrNoSections
	}
	percent = Clamp(percent)

	total := 0
	lengths := make([]int, len(sections))
	for i, s := range sections {
		lengths[i] = utf8.RuneCountInString(s)
		total += lengths[i]
	}

	target := total * percent / 100

	acc := 0
	for i, l := range lengths {
		if target < acc+l {
			return Position{Section: i, Offset: target - acc}, nil
		}
		acc += l
	}

	// target == total: the end of the book.
	last := len(sections) - 1
	return Position{Section: last, Offset: lengths[last]}, nil
}

// Clamp forces a percentage into [0,100]. Progress is advisory telemetry,
// so out-of-range input is corrected rather than rejected.
func Clamp(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// ProgressStore persists the progress percentage for a book.
type ProgressStore interface {
	UpdateProgress(bookID uuid.UUID, percent int) error
}

// Tracker records reading progress through a ProgressStore.
type Tracker struct {
	store ProgressStore
}

func NewTracker(store ProgressStore) *Tracker {
	return &Tracker{store: store}
}

// RecordProgress clamps and persists a progress percentage.
func (t *Tracker) RecordProgress(bookID uuid.UUID, percent int) error {
	return t.store.UpdateProgress(bookID, Clamp(percent))
}
