package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps a validated snapshot of the service configuration and
// reloads it when the config file or its schema changes on disk. A snapshot
// only replaces the previous one when the new file passes validation, so
// readers never observe a broken config.
type Watcher struct {
	path       string
	schemaPath string
	onReload   func(*Config, error)

	mu      sync.RWMutex
	current *Config

	reloads   atomic.Uint32
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher loads the initial config and starts watching it, together with
// its schema, for changes. onReload may be nil.
func NewWatcher(path, schemaPath string, onReload func(*Config, error)) (*Watcher, error) {
	cfg, err := LoadAndValidate(path, schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	watcher := &Watcher{
		path:       path,
		schemaPath: schemaPath,
		onReload:   onReload,
		current:    cfg,
		done:       make(chan struct{}),
	}

	go watcher.watch()

	return watcher, nil
}

// watch translates filesystem events into debounced reloads. The parent
// directories are watched rather than the files themselves: provisioning
// scripts and most editors replace files by rename, which drops a watch
// held on the old inode.
func (cw *Watcher) watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create file watcher", "error", err)
		return
	}
	defer watcher.Close()

	for _, dir := range watchDirs(cw.path, cw.schemaPath) {
		if err := watcher.Add(dir); err != nil {
			slog.Error("Failed to watch config directory", "dir", dir, "error", err)
			return
		}
	}

	var timer *time.Timer
	const debounce = 500 * time.Millisecond

	for {
		select {
		case <-cw.done:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if !cw.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, cw.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			slog.Error("Watcher error", "error", err)
		}
	}
}

// relevant reports whether the event path is the config or schema file.
func (cw *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	return name == filepath.Clean(cw.path) || name == filepath.Clean(cw.schemaPath)
}

// watchDirs returns the distinct parent directories of the given paths.
func watchDirs(paths ...string) []string {
	seen := make(map[string]struct{}, len(paths))
	dirs := make([]string, 0, len(paths))
	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}

// reload revalidates the config file against the schema.
func (cw *Watcher) reload() {
	count := cw.reloads.Add(1)
	slog.Info("Reloading config file", "path", cw.path, "count", count)

	cfg, err := LoadAndValidate(cw.path, cw.schemaPath)
	if err != nil {
		slog.Error("Failed to reload config, keeping previous snapshot", "error", err)
		if cw.onReload != nil {
			cw.onReload(nil, err)
		}
		return
	}

	cw.mu.Lock()
	cw.current = cfg
	cw.mu.Unlock()

	slog.Info("Config reloaded successfully", "count", count)
	if cw.onReload != nil {
		cw.onReload(cfg, nil)
	}
}

// Snapshot returns the latest validated config (thread-safe).
func (cw *Watcher) Snapshot() *Config {
	cw.mu.RLock()
	defer cw.mu.RUnlock()

	return cw.current
}

// ReloadCount returns the number of reload attempts so far.
func (cw *Watcher) ReloadCount() uint32 {
	return cw.reloads.Load()
}

// Close stops the watch goroutine. The last snapshot stays readable.
func (cw *Watcher) Close() {
	cw.closeOnce.Do(func() {
		close(cw.done)
	})
}
