package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch calls onChange with freshly loaded config each time file at path is saved,
// either in place or by renaming another file over it.
// Invalid config is logged and skipped, previous one stays active.
// Blocks until ctx is done.
func Watch(ctx context.Context, path string, logger zerolog.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)

	// dir watch survives inode replacement of the file itself
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !isSave(event) {
				continue
			}
			if _, err := os.Stat(target); err != nil {
				// moved away or removed, wait for the next save
				continue
			}

			cfg, err := Load(target)
			if err != nil {
				logger.
					Error().
					Err(fmt.Errorf("reloading config: %w", err)).
					Send()
				continue
			}

			logger.Info().Str("path", target).Msg("config reloaded")
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.
				Error().
				Err(fmt.Errorf("watching config: %w", err)).
				Send()
		}
	}
}

func isSave(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename)
}
