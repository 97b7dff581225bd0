package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sweep removes request directories under root whose modification time is
// older than ttl. Entries that are not request directories are left alone.
func Sweep(root string, ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("read storage root: %w", err)
	}

	cutoff := now.Add(-ttl)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// StartSweeper runs Sweep every interval until ctx is done.
func StartSweeper(ctx context.Context, logger *zap.Logger, root string, ttl, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := Sweep(root, ttl, now)
				if err != nil {
					logger.Warn("storage sweep failed", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Info("storage swept", zap.Int("removed", n))
				}
			}
		}
	}()
}
