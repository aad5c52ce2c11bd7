// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package settings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay collapses the burst of events a single save produces
const reloadDelay = 100 * time.Millisecond

// Watch reloads the store whenever its settings file changes, until ctx is
// cancelled. The file's directory is watched rather than the file itself so
// editors that save by rename are still picked up. Watch returns once the
// watch is registered.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	target := filepath.Clean(s.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch settings directory: %w", err)
	}

	go s.watchLoop(ctx, w, target)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher, target string) {
	defer w.Close()

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(reloadDelay)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Error("settings watcher error", "error", err)

		case <-timer.C:
			if err := s.Reload(); err != nil {
				slog.Warn("settings reload failed, keeping previous settings", "error", err)
				continue
			}
			slog.Info("settings reloaded", "path", target, "version", s.Version())
		}
	}
}
