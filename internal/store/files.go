// Package store keeps the uploaded bytes of the active attachment on disk.
// The stored file is the attachment's transient display handle: it exists
// for the current session only and is removed on release, on replacement,
// and by the TTL cleaner as a backstop.
package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"docuchat/internal/models"
)

const (
	DefaultFileTTL         = 24 * time.Hour
	DefaultCleanupInterval = time.Hour
)

type FileStore struct {
	baseDir string
}

func New(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// Save writes the uploaded bytes under a per-attachment directory and
// returns the stored path.
func (s *FileStore) Save(id, name string, data []byte) (string, error) {
	destDir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create attachment directory: %w", err)
	}
	destPath := filepath.Join(destDir, filepath.Base(name))
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", fmt.Errorf("store attachment file: %w", err)
	}
	return destPath, nil
}

// Release invalidates the attachment's display handle. Safe to call any
// number of times: an already-released attachment and a missing file are
// both no-ops.
func (s *FileStore) Release(att *models.Attachment) {
	if att == nil || att.FilePath == "" {
		return
	}
	if err := os.Remove(att.FilePath); err != nil && !os.IsNotExist(err) {
		log.Printf("remove attachment file %s failed: %v", att.FilePath, err)
	}
	// prune the empty per-attachment directory
	_ = os.Remove(filepath.Dir(att.FilePath))
	att.FilePath = ""
}

// StartCleaner launches a loop deleting stored files older than ttl. It is
// a backstop for handles that were never explicitly released.
func (s *FileStore) StartCleaner(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		ttl = DefaultFileTTL
	}
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	go s.cleanupLoop(ctx, ttl, interval)
}

func (s *FileStore) cleanupLoop(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.cleanupExpired(ttl); err != nil {
				log.Printf("cleanup attachment files error: %v", err)
			}
		}
	}
}

func (s *FileStore) cleanupExpired(ttl time.Duration) error {
	cutoff := time.Now().Add(-ttl)
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.baseDir, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			info, err := f.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, f.Name())
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Printf("remove expired file %s failed: %v", path, err)
			}
		}
		_ = os.Remove(dir)
	}
	return nil
}
