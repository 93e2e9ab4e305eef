package kb

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval batches bursts of filesystem events (editors often
// write several events per save) into a single refresh.
const debounceInterval = 2 * time.Second

// Watch invalidates the snapshot whenever files under root change. It
// blocks until the context is cancelled, so callers run it in a
// goroutine. Only the local connector has a watchable root.
func (s *Service) Watch(ctx context.Context, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		return err
	}
	log.Printf("kb: watching %s for changes", root)

	var timer *time.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories must be registered to see their files.
			if event.Op.Has(fsnotify.Create) {
				_ = addRecursive(watcher, event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(debounceInterval)
				timerCh = timer.C
			} else {
				timer.Reset(debounceInterval)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("kb: watch error: %v", err)
		case <-timerCh:
			timer = nil
			timerCh = nil
			log.Printf("kb: filesystem changed, invalidating snapshot")
			s.Invalidate()
			if _, err := s.Refresh(ctx, nil); err != nil {
				log.Printf("kb: refresh after change failed: %v", err)
			}
		}
	}
}

// addRecursive watches a directory and all of its subdirectories. Paths
// that are not directories are ignored.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name == ".git" || name == ".magnus" || name == "node_modules" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
