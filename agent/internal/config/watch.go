package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the file must stay quiet before a reload. Editors often
// emit several writes per save.
const settle = 50 * time.Millisecond

// Watch reloads the sensor config whenever path changes and hands the result
// to onChange. It watches the containing directory so that rename-on-save
// editors are picked up, and runs until ctx is cancelled.
//
// A reload that fails to parse or validate is logged and skipped.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	target := filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	slog.Info("agent config: watching sensor definitions", "path", target)

	var (
		timer   *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target ||
				!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			settled = timer.C

		case <-settled:
			settled = nil
			cfg, err := Load(target)
			if err != nil {
				slog.Error("agent config: reload failed, keeping previous sensors", "path", target, "err", err)
				continue
			}
			slog.Info("agent config: sensors reloaded", "sensors", len(cfg.Agent.Sensors))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("agent config: watcher error", "err", err)
		}
	}
}
