package filex

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/storeit/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay unwritten before it is reported.
const DefaultSettle = 500 * time.Millisecond

// Watcher reports regular files created or rewritten in one directory once
// writes to them have been quiet for the settle period.
type Watcher struct {
	fw     *fsnotify.Watcher
	settle time.Duration
	log    logging.Logger
	out    chan string
	done   chan struct{}
	loop   sync.WaitGroup
	fires  sync.WaitGroup

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func Watch(dir string, settle time.Duration, log logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Nop()
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		fw:     fw,
		settle: settle,
		log:    log.With("component", "watch", "dir", dir),
		out:    make(chan string),
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}
	w.loop.Add(1)
	go w.run()
	return w, nil
}

// Files delivers settled paths. It is closed by Close.
func (w *Watcher) Files() <-chan string {
	return w.out
}

func (w *Watcher) run() {
	defer w.loop.Done()
	ctx := context.Background()
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(ev.Name)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// schedule restarts the settle timer of path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[path]; ok && t.Stop() {
		w.fires.Done()
	}
	w.fires.Add(1)
	w.timers[path] = time.AfterFunc(w.settle, func() { w.fire(path) })
}

func (w *Watcher) fire(path string) {
	defer w.fires.Done()

	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return
	}
	select {
	case w.out <- path:
	case <-w.done:
	}
}

// Close stops watching and closes Files once no report is pending.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	for path, t := range w.timers {
		if t.Stop() {
			w.fires.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()

	err := w.fw.Close()
	w.loop.Wait()
	w.fires.Wait()
	close(w.out)
	return err
}
