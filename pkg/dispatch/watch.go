package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/systemstart/font-assistant/pkg/api"
)

// DefaultDebounce groups the events of one drop (several files, each
// written in chunks) into a single batch.
const DefaultDebounce = 500 * time.Millisecond

// Watcher turns a directory of drop zones into requests. Each operation has
// its own zone, <root>/<operation>; files landing there are batched and
// dispatched as one request per zone.
type Watcher struct {
	root       string
	dispatcher *Dispatcher
	debounce   time.Duration
	fsw        *fsnotify.Watcher
	zones      map[string]api.Kind
}

// ZoneDir returns the drop zone directory of kind under root.
func ZoneDir(root string, kind api.Kind) string {
	return filepath.Join(root, string(kind))
}

// NewWatcher creates the zone directories under root and starts watching them.
func NewWatcher(root string, d *Dispatcher, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving drop root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:       root,
		dispatcher: d,
		debounce:   debounce,
		fsw:        fsw,
		zones:      make(map[string]api.Kind),
	}

	for _, k := range api.Kinds {
		dir := ZoneDir(root, k)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("creating drop zone %s: %w", dir, err)
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch drop zone %s: %w", dir, err)
		}
		w.zones[filepath.Clean(dir)] = k
	}

	return w, nil
}

// Run delivers a report for every run started from a drop, and a failed
// report for every rejected drop, until ctx is done. Drops still waiting for
// the debounce at that point are reported as cancelled. It returns after all
// reports of started runs were delivered; the caller owns reports and closes
// it afterwards.
func (w *Watcher) Run(ctx context.Context, reports chan<- api.Report) error {
	defer w.fsw.Close()

	var inflight sync.WaitGroup
	defer inflight.Wait()

	pending := make(map[api.Kind][]string)
	seen := make(map[string]bool)
	var fire <-chan time.Time

	slog.Info("watching drop zones", "root", w.root)

	for {
		select {
		case <-ctx.Done():
			w.abandon(pending, reports, &inflight)
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.collect(ev, pending, seen) {
				fire = time.After(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("drop zone watch error", "error", err)

		case <-fire:
			fire = nil
			w.flush(ctx, pending, reports, &inflight)
			clear(pending)
			clear(seen)
		}
	}
}

func (w *Watcher) collect(ev fsnotify.Event, pending map[api.Kind][]string, seen map[string]bool) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}

	kind, ok := w.zones[filepath.Dir(ev.Name)]
	if !ok || !kind.Accepts(filepath.Ext(ev.Name)) {
		return false
	}

	info, err := os.Stat(ev.Name)
	if err != nil || info.IsDir() {
		return false
	}

	if !seen[ev.Name] {
		seen[ev.Name] = true
		pending[kind] = append(pending[kind], ev.Name)
		slog.Debug("file dropped", "zone", kind, "path", ev.Name)
	}
	return true
}

func (w *Watcher) flush(ctx context.Context, pending map[api.Kind][]string, reports chan<- api.Report, inflight *sync.WaitGroup) {
	for _, kind := range api.Kinds {
		var paths []string
		for _, p := range pending[kind] {
			if _, err := os.Stat(p); err == nil {
				paths = append(paths, p)
			}
		}
		if len(paths) == 0 {
			continue
		}

		req := api.Request{Kind: kind, Paths: paths}
		ch, err := w.dispatcher.Dispatch(ctx, req)
		if err != nil {
			slog.Warn("drop rejected", "zone", kind, "files", len(paths), "error", err)
			w.reject(kind, paths, err, reports, inflight)
			continue
		}

		inflight.Add(1)
		go func() {
			defer inflight.Done()
			for r := range ch {
				reports <- r
			}
		}()
	}
}

// abandon reports every pending drop as cancelled.
func (w *Watcher) abandon(pending map[api.Kind][]string, reports chan<- api.Report, inflight *sync.WaitGroup) {
	for _, kind := range api.Kinds {
		paths := pending[kind]
		if len(paths) == 0 {
			continue
		}
		slog.Warn("drop not dispatched before shutdown", "zone", kind, "files", len(paths))
		w.reject(kind, paths, api.NewError(api.ErrCanceled, "watch stopped before the drop was dispatched"), reports, inflight)
	}
}

func (w *Watcher) reject(kind api.Kind, paths []string, err error, reports chan<- api.Report, inflight *sync.WaitGroup) {
	rejected := api.Report{
		Label:     filepath.Base(paths[0]),
		Operation: string(kind),
		Paths:     paths,
		Outcome:   api.Failed(err),
	}
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		reports <- rejected
	}()
}
