package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change before notifying.
const DefaultDebounce = 200 * time.Millisecond

// Watch notifies on the returned channel after task files change, collapsing
// bursts of filesystem events into one notification per quiet period.
// The channel is closed when ctx is done.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.baseDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.baseDir, err)
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)
		defer watcher.Close()

		timer := time.NewTimer(debounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isTaskFile(event.Name) || event.Op == fsnotify.Chmod {
					continue
				}
				timer.Reset(debounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.WarnContext(ctx, "task directory watcher error", "error", err)

			case <-timer.C:
				// Coalesce with a pending notification the consumer has not read yet.
				select {
				case changes <- struct{}{}:
				default:
				}
			}
		}
	}()

	return changes, nil
}

func isTaskFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, fileExt) && !strings.HasPrefix(name, ".")
}
