package explore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce groups the bursts of events editors emit on save.
const DefaultReloadDebounce = 200 * time.Millisecond

// Watch reloads the YAML file at path whenever it changes and hands every
// valid config to apply. Invalid edits are logged and skipped, so the last
// good config stays in use. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file: editors commonly
// save by renaming a temporary file over the original.
func Watch(ctx context.Context, path string, debounce time.Duration, apply func(*Config)) error {
	if path == "" {
		return errors.New("no explore config path to watch")
	}
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Explore config watcher error", "path", target, "error", err)

		case <-timer.C:
			cfg, err := Load(target)
			if err != nil {
				slog.WarnContext(ctx, "Ignoring invalid explore config", "path", target, "error", err)
				continue
			}
			slog.InfoContext(ctx, "Explore config reloaded", "path", target)
			apply(cfg)
		}
	}
}
