package blueprint

import (
	"github.com/fsnotify/fsnotify"
)

// Watcher watches every file-backed source registered on a Document
// and emits a trigger signal when they change (a burst of changes
// coalesces into one pending signal), grounded on the
// teacher corpus's fsnotify-backed template bundle (robfig/soy's
// Bundle.WatchFiles/recompiler), generalized from that package's
// ancient pre-1.0 fsnotify API (a single combined Event/Error channel
// pair, Watch/RemoveWatch) to the current fsnotify.Watcher's
// Events/Errors channels and Add/Remove methods.
//
// Watcher intentionally does not recompile the Document itself —
// unlike the teacher's recompiler, which swaps a *template.Registry
// in place — because spec.md §4.4's Reload is a plain, synchronous
// Document method the caller (pkg/runtime) already owns the right to
// call on its own goroutine. Watcher's only job is to say "something
// changed"; pkg/runtime decides when and how to act on that.
type Watcher struct {
	fsw     *fsnotify.Watcher
	changed chan struct{}
	errs    chan error
	done    chan struct{}
}

// NewWatcher starts watching every file-backed source already
// registered on doc. Sources registered after NewWatcher returns are
// not picked up automatically; call Add for those.
func NewWatcher(doc *Document) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		changed: make(chan struct{}, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	for _, path := range doc.Sources() {
		if err := fsw.Add(path); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	go w.run()
	return w, nil
}

// Add watches an additional file path, for a source registered after
// NewWatcher returned.
func (w *Watcher) Add(path string) error {
	return w.fsw.Add(path)
}

// Changed signals once per coalesced batch of filesystem events; a
// receiver should drain it and call Document.Reload. It is buffered
// to depth 1 so a burst of writes (common with editors that write via
// a temp file and rename) coalesces into a single reload rather than
// queuing one per event.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Errors surfaces fsnotify's own watch errors (e.g. a watched file
// removed out from under the watcher), separate from Changed so a
// caller can log them without mistaking them for a reload trigger.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the underlying fsnotify watcher and its relay goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.changed <- struct{}{}:
			default:
				// already a pending signal; this event coalesces into it.
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}
