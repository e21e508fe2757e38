package config

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls onChange with the freshly loaded Config whenever the contents
// of path change. The parent directory is watched so rename-on-save editors
// are seen; writes that leave the bytes unchanged are ignored. Watch runs
// until ctx is cancelled.
//
// A reload that fails to parse or validate is logged and the previous config
// stays active; onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	target := filepath.Clean(path)
	last, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("watch %s: %w", target, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	slog.Info("config: watching for changes", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			raw, err := os.ReadFile(target)
			if err != nil || bytes.Equal(raw, last) {
				continue
			}
			last = raw

			cfg, err := Load(target)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config", "path", target, "err", err)
				continue
			}
			slog.Info("config: reloaded", "path", target)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
