package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"docuchat/internal/models"
)

func TestSaveAndRelease(t *testing.T) {
	s := New(t.TempDir())

	path, err := s.Save("att-1", "report.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("stored bytes = %q", data)
	}

	att := &models.Attachment{FilePath: path}
	s.Release(att)
	if att.FilePath != "" {
		t.Error("Release did not clear the file path")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("stored file still present after release: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Errorf("attachment directory still present after release: %v", err)
	}
}

func TestSaveStripsPathComponents(t *testing.T) {
	base := t.TempDir()
	s := New(base)

	path, err := s.Save("att-1", "../../escape.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	want := filepath.Join(base, "att-1", "escape.pdf")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := New(t.TempDir())

	s.Release(nil)
	s.Release(&models.Attachment{})

	path, err := s.Save("att-1", "a.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	att := &models.Attachment{FilePath: path}
	s.Release(att)
	s.Release(att)
}

func TestCleanupExpired(t *testing.T) {
	base := t.TempDir()
	s := New(base)

	oldPath, err := s.Save("old", "stale.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	freshPath, err := s.Save("fresh", "recent.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.cleanupExpired(24 * time.Hour); err != nil {
		t.Fatalf("cleanupExpired failed: %v", err)
	}

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("expired file still present: %v", err)
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Errorf("fresh file removed: %v", err)
	}
}

func TestCleanupMissingBaseDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"))
	if err := s.cleanupExpired(time.Hour); err != nil {
		t.Fatalf("cleanupExpired on missing dir: %v", err)
	}
}
