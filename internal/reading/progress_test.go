package reading

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestResolvePositionEndpoints(t *testing.T) {
	sections := []string{"абвгд", "abcdefghij", "xyz"}

	start, err := ResolvePosition(0, sections)
	if err != nil {
		t.Fatalf("ResolvePosition(0) failed: %v", err)
	}
	if start != (Position{Section: 0, Offset: 0}) {
		t.Errorf("0%% = %+v, expected start of first section", start)
	}

	end, err := ResolvePosition(100, sections)
	if err != nil {
		t.Fatalf("ResolvePosition(100) failed: %v", err)
	}
	if end != (Position{Section: 2, Offset: 3}) {
		t.Errorf("100%% = %+v, expected end of last section", end)
	}
}

func TestResolvePositionMidBook(t *testing.T) {
	// 10 + 10 runes, 50% lands exactly on the second section's start
	sections := []string{strings.Repeat("а", 10), strings.Repeat("б", 10)}

	pos, err := ResolvePosition(50, sections)
	if err != nil {
		t.Fatalf("ResolvePosition failed: %v", err)
	}
	if pos != (Position{Section: 1, Offset: 0}) {
		t.Errorf("50%% = %+v, expected start of second section", pos)
	}

	pos, err = ResolvePosition(25, sections)
	if err != nil {
		t.Fatalf("ResolvePosition failed: %v", err)
	}
	if pos != (Position{Section: 0, Offset: 5}) {
		t.Errorf("25%% = %+v", pos)
	}
}

func TestResolvePositionCountsRunesNotBytes(t *testing.T) {
	// 4 cyrillic runes are 8 bytes; offsets must stay in rune units
	sections := []string{"ღომи"}

	pos, err := ResolvePosition(50, sections)
	if err != nil {
		t.Fatalf("ResolvePosition failed: %v", err)
	}
	if pos.Offset != 2 {
		t.Errorf("offset = %d, expected rune offset 2", pos.Offset)
	}
}

func TestResolvePositionMonotonic(t *testing.T) {
	sections := []string{
		strings.Repeat("а", 37),
		strings.Repeat("б", 11),
		strings.Repeat("в", 52),
	}

	prevSection, prevOffset := 0, 0
	prevAbsolute := 0
	lengths := []int{37, 11, 52}

	for percent := 0; percent <= 100; percent++ {
		pos, err := ResolvePosition(percent, sections)
		if err != nil {
			t.Fatalf("ResolvePosition(%d) failed: %v", percent, err)
		}

		absolute := pos.Offset
		for i := 0; i < pos.Section; i++ {
			absolute += lengths[i]
		}
		if absolute < prevAbsolute {
			t.Errorf("position went backwards at %d%%: %d,%d after %d,%d",
				percent, pos.Section, pos.Offset, prevSection, prevOffset)
		}
		if pos.Offset > lengths[pos.Section] {
			t.Errorf("offset %d exceeds section %d length at %d%%", pos.Offset, pos.Section, percent)
		}

		prevSection, prevOffset, prevAbsolute = pos.Section, pos.Offset, absolute
	}
}

func TestResolvePositionClampsInput(t *testing.T) {
	sections := []string{"abcde"}

	pos, err := ResolvePosition(-20, sections)
	if err != nil {
		t.Fatalf("ResolvePosition(-20) failed: %v", err)
	}
	if pos != (Position{Section: 0, Offset: 0}) {
		t.Errorf("-20%% = %+v, expected the start", pos)
	}

	pos, err = ResolvePosition(250, sections)
	if err != nil {
		t.Fatalf("ResolvePosition(250) failed: %v", err)
	}
	if pos != (Position{Section: 0, Offset: 5}) {
		t.Errorf("250%% = %+v, expected the end", pos)
	}
}

func TestResolvePositionNoSections(t *testing.T) {
	if _, err := ResolvePosition(50, nil); !errors.Is(err, ErrNoSections) {
		t.Errorf("expected ErrNoSections, got %v", err)
	}
	if _, err := ResolvePosition(50, []string{}); !errors.Is(err, ErrNoSections) {
		t.Errorf("expected ErrNoSections, got %v", err)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, out int
	}{
		{-1, 0}, {0, 0}, {55, 55}, {100, 100}, {101, 100},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.out {
			t.Errorf("Clamp(%d) = %d, expected %d", tt.in, got, tt.out)
		}
	}
}

type recordingStore struct {
	bookID  uuid.UUID
	percent int
	err     error
}

func (r *recordingStore) UpdateProgress(bookID uuid.UUID, percent int) error {
	r.bookID = bookID
	r.percent = percent
	return r.err
}

func TestTrackerClampsBeforePersisting(t *testing.T) {
	store := &recordingStore{}
	tracker := NewTracker(store)
	bookID := uuid.New()

	if err := tracker.RecordProgress(bookID, 130); err != nil {
		t.Fatalf("RecordProgress failed: %v", err)
	}
	if store.percent != 100 {
		t.Errorf("persisted percent = %d, expected clamped 100", store.percent)
	}
	if store.bookID != bookID {
		t.Errorf("persisted book id = %s", store.bookID)
	}

	if err := tracker.RecordProgress(bookID, -5); err != nil {
		t.Fatalf("RecordProgress failed: %v", err)
	}
	if store.percent != 0 {
		t.Errorf("persisted percent = %d, expected clamped 0", store.percent)
	}
}

func TestTrackerPropagatesStoreError(t *testing.T) {
	wantErr := errors.New("boom")
	tracker := NewTracker(&recordingStore{err: wantErr})

	if err := tracker.RecordProgress(uuid.New(), 10); !errors.Is(err, wantErr) {
		t.Errorf("expected the store error, got %v", err)
	}
}
