package source

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/mosaic/internal/logging"
)

// reloadDebounce collapses the burst of events editors emit for one save.
const reloadDebounce = 100 * time.Millisecond

// FixtureWatcher reloads a fixtures file whenever it changes and hands the
// result to a callback.
type FixtureWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onReload func(*Fixtures)
	logger   *logging.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewFixtureWatcher watches path. The parent directory is watched so that
// atomic rename-on-save is seen. onReload runs on the watcher goroutine.
func NewFixtureWatcher(path string, onReload func(*Fixtures), logger *logging.Logger) (*FixtureWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &FixtureWatcher{
		path:     abs,
		watcher:  w,
		onReload: onReload,
		logger:   logger.WithComponent("fixtures").With("path", abs),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching.
func (fw *FixtureWatcher) Start() {
	fw.wg.Add(1)
	go fw.loop()
}

// Stop ends the watch loop and waits for it. Safe to call more than once.
func (fw *FixtureWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.stopCh)
		_ = fw.watcher.Close()
	})
	fw.wg.Wait()
}

func (fw *FixtureWatcher) loop() {
	defer fw.wg.Done()

	debounce := time.NewTimer(reloadDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-fw.stopCh:
			return

		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(reloadDebounce)

		case <-debounce.C:
			fw.reload()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("fixture watch error", "error", err)
		}
	}
}

func (fw *FixtureWatcher) reload() {
	f, err := LoadFixtures(fw.path)
	if err != nil {
		// Keep serving the previous payloads.
		fw.logger.Warn("fixture reload failed", "error", err)
		return
	}
	fw.logger.Info("fixtures reloaded")
	if fw.onReload != nil {
		fw.onReload(f)
	}
}
