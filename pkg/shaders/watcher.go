package shaders

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/df07/go-progressive-gltracer/pkg/core"
	"github.com/df07/go-progressive-gltracer/pkg/input"
)

// DefaultDebounce collapses the burst of events editors emit on save
const DefaultDebounce = 150 * time.Millisecond

// Watcher requests a shader reload whenever a shader file in the override
// directory changes. It never touches GL state; the render loop performs
// the reload when it drains the request.
type Watcher struct {
	dir      string
	queue    *input.Queue
	logger   core.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher starts watching dir. Close must be called to release it.
func NewWatcher(dir string, queue *input.Queue, logger core.Logger) (*Watcher, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: shader watch needs a shader directory", core.ErrConfigurationFault)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating shader watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("%w: watching %s: %v", core.ErrResourceLoadFault, dir, err)
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	return &Watcher{
		dir:      dir,
		queue:    queue,
		logger:   logger,
		debounce: DefaultDebounce,
		watcher:  fw,
	}, nil
}

// Run forwards changes until ctx is cancelled or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !IsShaderFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(w.debounce)
		case <-pending:
			pending = nil
			if !w.queue.Push(input.Key(input.ReloadShaders)) {
				w.logger.Printf("Command queue full, dropping shader reload\n")
				continue
			}
			w.logger.Printf("Shader change detected in %s\n", w.dir)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("Shader watcher error: %v\n", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
