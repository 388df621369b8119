package lessons

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultWatchDebounce absorbs the burst of events editors emit on save.
const DefaultWatchDebounce = 250 * time.Millisecond

// Update is a re-parse of a changed lesson file. Exactly one of Lesson and
// Err is set.
type Update struct {
	Path   string
	Lesson *Lesson
	Err    error
}

// Watcher re-parses lesson files in a directory whenever they change.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	dir      string
	debounce time.Duration
	log      *zap.Logger
	pending  map[string]time.Time
	updates  chan Update
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long a file must be quiet before it is re-parsed.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the logger. The default discards output.
func WithWatchLogger(l *zap.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWatcher prepares a watcher for dir. Call Start to begin watching.
func NewWatcher(dir string, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		dir:      dir,
		debounce: DefaultWatchDebounce,
		log:      zap.NewNop(),
		pending:  make(map[string]time.Time),
		updates:  make(chan Update, 16),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	w.log = w.log.Named("watcher")
	return w, nil
}

// Updates delivers re-parsed lessons. It is closed when the watcher stops.
func (w *Watcher) Updates() <-chan Update { return w.updates }

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.fsw.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.log.Debug("watching lesson dir", zap.String("dir", w.dir))

	go w.run(ctx)
	return nil
}

// Stop ends watching and waits for the loop to exit. Safe to call more
// than once and before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.fsw.Close(); err != nil {
		w.log.Warn("close watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.updates)

	tick := time.NewTicker(w.tickInterval())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case now := <-tick.C:
			for _, u := range w.flush(now) {
				select {
				case w.updates <- u:
				case <-ctx.Done():
					return
				case <-w.stopCh:
					return
				}
			}
		}
	}
}

func (w *Watcher) tickInterval() time.Duration {
	d := w.debounce / 4
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	return d
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !IsLessonFile(ev.Name) {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	w.log.Debug("lesson file changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

// flush re-parses every pending file that has been quiet for the debounce
// window.
func (w *Watcher) flush(now time.Time) []Update {
	w.mu.Lock()
	var ready []string
	for p, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, p)
			delete(w.pending, p)
		}
	}
	w.mu.Unlock()
	sort.Strings(ready)

	out := make([]Update, 0, len(ready))
	for _, p := range ready {
		data, err := os.ReadFile(p)
		if err != nil {
			// Removed between the event and the flush.
			continue
		}
		l, err := Parse(data, filepath.Base(p))
		out = append(out, Update{Path: p, Lesson: l, Err: err})
	}
	return out
}
