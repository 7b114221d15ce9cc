package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a FileStore when its file changes on disk. It watches the
// parent directory so editors that replace the file atomically are seen.
type Watcher struct {
	store    *FileStore
	log      *zap.Logger
	fs       *fsnotify.Watcher
	target   string
	debounce time.Duration

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewWatcher(store *FileStore, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	target, err := filepath.Abs(store.Path())
	if err != nil {
		_ = fw.Close()
		return nil, err
	}

	return &Watcher{
		store:    store,
		log:      log,
		fs:       fw,
		target:   target,
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period before a reload. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fs.Add(filepath.Dir(w.target)); err != nil {
		return err
	}
	w.started = true
	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the OS watch. Safe to call twice.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.fs.Close()
		if w.started {
			<-w.doneCh
		}
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			n := w.store.Reload()
			w.log.Debug("catalog reloaded after change", zap.Int("products", n))

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
