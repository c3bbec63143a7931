package deck

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last file event before a
// reload runs.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Patterns are doublestar globs matched against slash-separated paths
	// relative to the deck directory. The deck file itself always matches.
	Patterns []string
	Debounce time.Duration
}

// Watch reloads d whenever a matching file under its directory changes,
// until ctx is cancelled. Bursts of events within the debounce window cause
// one reload.
func Watch(ctx context.Context, d *Deck, opts WatchOptions) error {
	if d.store == nil {
		return ErrNoSource
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	patterns := append([]string{filepath.ToSlash(d.file)}, opts.Patterns...)
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			d.logger.Warn("watcher: invalid pattern ignored", slog.String("pattern", p))
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := d.store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	d.logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			d.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			changed, err := d.Reload()
			if err != nil {
				d.logger.Warn("watcher: reload failed, keeping previous slides",
					slog.String("error", err.Error()))
				continue
			}
			d.logger.Debug("watcher: reload", slog.Bool("changed", changed))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						d.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			if !matchAny(patterns, filepath.ToSlash(rel)) {
				continue
			}
			d.logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
