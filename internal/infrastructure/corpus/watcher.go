package corpus

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// reloadDebounce coalesces the burst of events editors and copy tools emit
// for a single save.
const reloadDebounce = 250 * time.Millisecond

// Watch reloads the store whenever one of paths changes on disk. The parent
// directories are watched so that atomic replace-by-rename is observed. Watch
// returns once the watcher is running; it stops when ctx is cancelled.
func (s *Store) Watch(ctx context.Context, paths ...string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create corpus watcher")
	}

	targets := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return errors.Wrapf(err, errors.CodeInternal, "failed to watch %s", dir)
		}
	}

	go s.watchLoop(ctx, w, targets)
	s.logger.Info("watching corpus files for changes", logging.Strings("paths", paths))
	return nil
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher, targets map[string]struct{}) {
	defer w.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil {
				name = ev.Name
			}
			if _, hit := targets[name]; !hit {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s.logger.Info("corpus change detected, reloading")
			s.Load(ctx)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.WithError(err).Warn("corpus watcher error")
		}
	}
}

//Personal.AI order the ending
