package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("partial download"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("set mtime: %v", err)
	}
	return path
}

func TestRunOnceSweepsStaleTempFiles(t *testing.T) {
	tempDir := t.TempDir()
	stale := writeTempFile(t, tempDir, "download_stale", 2*time.Hour)
	fresh := writeTempFile(t, tempDir, "download_fresh", time.Minute)

	s := NewCleanupScheduler(nil, tempDir, time.Hour, 0)
	s.RunOnce()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale temp file was not removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh temp file should survive the sweep: %v", err)
	}
}

func TestRunOnceIgnoresSubdirectories(t *testing.T) {
	tempDir := t.TempDir()
	subdir := filepath.Join(tempDir, "keep")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stamp := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(subdir, stamp, stamp); err != nil {
		t.Fatalf("set mtime: %v", err)
	}

	s := NewCleanupScheduler(nil, tempDir, time.Hour, 0)
	s.RunOnce()

	if _, err := os.Stat(subdir); err != nil {
		t.Errorf("subdirectory should survive the sweep: %v", err)
	}
}

func TestRunOnceMissingTempDir(t *testing.T) {
	s := NewCleanupScheduler(nil, filepath.Join(t.TempDir(), "does-not-exist"), time.Hour, 0)
	// must not panic or create the directory
	s.RunOnce()
}

func TestStartStop(t *testing.T) {
	s := NewCleanupScheduler(nil, t.TempDir(), time.Hour, 0)

	if err := s.Start("0 * * * *"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	// starting twice is a no-op
	if err := s.Start("0 * * * *"); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	s.Stop()
	s.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewCleanupScheduler(nil, t.TempDir(), time.Hour, 0)
	if err := s.Start("not a schedule"); err == nil {
		t.Error("expected an error for a malformed schedule")
	}
}
