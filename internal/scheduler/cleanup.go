// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/akhmetov/librarian/internal/database/history"
)

// CleanupScheduler periodically sweeps stale download temp files and trims
// old search history. Temp files are normally removed by the fetcher
// itself; the sweep catches files orphaned by a crash mid-download.
type CleanupScheduler struct {
	historyRepo *history.Repository

	tempDir          string
	tempMaxAge       time.Duration
	historyRetention time.Duration

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewCleanupScheduler creates a scheduler sweeping tempDir and the search
// history.
func NewCleanupScheduler(historyRepo *history.Repository, tempDir string, tempMaxAge, historyRetention time.Duration) *CleanupScheduler {
	return &CleanupScheduler{
		historyRepo:      historyRepo,
		tempDir:          tempDir,
		tempMaxAge:       tempMaxAge,
		historyRetention: historyRetention,
		cron:             cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins periodic cleanup on the given cron schedule.
func (s *CleanupScheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Cleanup scheduler started (schedule %q)", schedule)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	log.Printf("Cleanup scheduler stopped")
}

// RunOnce executes one cleanup pass immediately. Exposed for startup
// sweeps and tests.
func (s *CleanupScheduler) RunOnce() {
	s.runOnce()
}

func (s *CleanupScheduler) runOnce() {
	s.sweepTempFiles()
	s.trimHistory()
}

func (s *CleanupScheduler) sweepTempFiles() {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Cleanup: cannot read temp dir %s: %v", s.tempDir, err)
		}
		return
	}

	cutoff := time.Now().Add(-s.tempMaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.tempDir, entry.Name())); err != nil {
			log.Printf("Cleanup: cannot remove stale temp file %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("Cleanup: removed %d stale temp file(s)", removed)
	}
}

func (s *CleanupScheduler) trimHistory() {
	if s.historyRepo == nil || s.historyRetention <= 0 {
		return
	}
	trimmed, err := s.historyRepo.TrimOlderThan(time.Now().Add(-s.historyRetention))
	if err != nil {
		log.Printf("Cleanup: cannot trim search history: %v", err)
		return
	}
	if trimmed > 0 {
		log.Printf("Cleanup: trimmed %d old search history entries", trimmed)
	}
}
