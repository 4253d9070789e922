package importer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/ragnotes/pkg/logger"
)

// DefaultDebounce is how long Watch waits after the last write to a file
// before importing it.
const DefaultDebounce = 500 * time.Millisecond

// SupportedExtensions lists the file extensions imported as notes.
var SupportedExtensions = []string{".txt", ".md", ".markdown"}

// Importer turns files into import jobs.
type Importer struct {
	pool     *Pool
	logger   *slog.Logger
	debounce time.Duration

	mu sync.Mutex
	// seen maps a path to the digest of the content last imported from it
	seen map[string][sha256.Size]byte
}

// Option configures an Importer.
type Option func(*Importer)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(i *Importer) { i.debounce = d }
}

// New creates an Importer feeding pool.
func New(pool *Pool, logger *slog.Logger, opts ...Option) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	i := &Importer{
		pool:     pool,
		logger:   logger,
		debounce: DefaultDebounce,
		seen:     make(map[string][sha256.Size]byte),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportPaths queues every supported file in paths. Directories are read one
// level deep. It returns the number of files queued; unreadable or missing
// paths are joined into the returned error without stopping the rest.
func (i *Importer) ImportPaths(ctx context.Context, paths []string) (int, error) {
	var (
		queued int
		errs   []error
	)

	for _, path := range paths {
		files, err := expand(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		for _, file := range files {
			ok, err := i.importFile(ctx, file, true)
			if err != nil {
				if ctx.Err() != nil {
					return queued, errors.Join(append(errs, ctx.Err())...)
				}
				errs = append(errs, err)
				continue
			}
			if ok {
				queued++
			}
		}
	}

	return queued, errors.Join(errs...)
}

// Watch imports supported files created or written in dir until ctx is
// done. Files already present are not imported; use ImportPaths for those.
func (i *Importer) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	i.logger.Info("watching for notes", "dir", dir)

	deb := newDebouncer(i.debounce)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !supported(event.Name) || !(event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				continue
			}

			name := event.Name
			deb.trigger(name, func() {
				if ctx.Err() != nil {
					return
				}
				if _, err := i.importFile(ctx, name, false); err != nil {
					i.logger.Warn("watch import failed", logger.Path(name), logger.Err(err))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// debouncer runs a callback per key once no trigger for that key has arrived
// for the configured delay.
type debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		d.mu.Unlock()

		fn()
	})
	d.timers[key] = t
}

// stop cancels pending callbacks and waits for running ones.
func (d *debouncer) stop() {
	d.mu.Lock()
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// importFile reads path and queues it unless it is empty or unchanged since
// the last import. block selects Submit over Enqueue.
func (i *Importer) importFile(ctx context.Context, path string, block bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		i.logger.Debug("skipping empty file", logger.Path(path))
		return false, nil
	}

	// The digest is claimed before queuing so a concurrent import of the
	// same content sees it and backs off.
	digest := sha256.Sum256([]byte(text))
	i.mu.Lock()
	prev, hadPrev := i.seen[path]
	if hadPrev && prev == digest {
		i.mu.Unlock()
		i.logger.Debug("skipping unchanged file", logger.Path(path))
		return false, nil
	}
	i.seen[path] = digest
	i.mu.Unlock()

	job := Job{Source: path, Text: text}
	var queueErr error
	if block {
		queueErr = i.pool.Submit(ctx, job)
	} else if !i.pool.Enqueue(job) {
		queueErr = fmt.Errorf("queue full, dropped %s", path)
	}
	if queueErr != nil {
		i.release(path, digest, prev, hadPrev)
		return false, queueErr
	}
	return true, nil
}

// release undoes a digest claim for path unless a later import replaced it.
func (i *Importer) release(path string, digest, prev [sha256.Size]byte, hadPrev bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.seen[path] != digest {
		return
	}
	if hadPrev {
		i.seen[path] = prev
	} else {
		delete(i.seen, path)
	}
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading dir %s: %w", path, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files, nil
}

func supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
