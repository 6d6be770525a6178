package dev

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatcherConfig configures the smart file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch. Directories are
	// watched recursively.
	Paths []string

	// Ignore patterns to skip (globs and path segments).
	Ignore []string

	// Logger receives watch diagnostics.
	Logger *zap.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	".build",
	".arkos",
	"node_modules",
	".env*",
	"*_test.go",
	"*.tmp",
	"*.swp",
	"*~",
}

// SmartWatcher watches files and distinguishes genuinely new files from
// re-announced ones. A path announced by the add event triggers the new-file
// callback at most once until Reset.
type SmartWatcher struct {
	config WatcherConfig
	log    *zap.Logger

	mu        sync.Mutex
	fsw       *fsnotify.Watcher
	tracked   map[string]struct{}
	onNewFile func(string)
	onChange  func(string)
	done      chan struct{}
}

// NewSmartWatcher creates a watcher. It does not start watching until Start
// is called.
func NewSmartWatcher(config WatcherConfig) *SmartWatcher {
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &SmartWatcher{
		config:  config,
		log:     log,
		tracked: make(map[string]struct{}),
	}
}

// OnChange sets the callback for file modifications. It fires on every write
// to a watched, non-ignored file.
func (w *SmartWatcher) OnChange(fn func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching. The tracked set is seeded with all files present at
// start, so they never count as new. Calling Start while already watching
// tears down the previous subscription and re-arms.
func (w *SmartWatcher) Start(onNewFile func(string)) error {
	w.mu.Lock()
	if w.fsw != nil {
		w.closeLocked()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}

	w.fsw = fsw
	w.onNewFile = onNewFile
	w.tracked = make(map[string]struct{})
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	for _, root := range w.config.Paths {
		w.addRoot(fsw, root, true)
	}

	go w.loop(fsw, done)
	return nil
}

// Reset clears the tracked-path set without tearing down the subscription.
// The next add event for a previously known path counts as new again.
func (w *SmartWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tracked = make(map[string]struct{})
}

// Close stops the subscription and clears all state. Safe to call twice, and
// safe to call without a prior Start.
func (w *SmartWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeLocked()
}

func (w *SmartWatcher) closeLocked() {
	if w.fsw != nil {
		close(w.done)
		w.fsw.Close()
		w.fsw = nil
	}
	w.tracked = make(map[string]struct{})
}

// TrackedCount returns the size of the tracked-path set.
func (w *SmartWatcher) TrackedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tracked)
}

// addRoot registers a file or directory tree with the underlying watcher.
// When seed is true, files found during the walk are marked as already seen.
func (w *SmartWatcher) addRoot(fsw *fsnotify.Watcher, root string, seed bool) {
	info, err := os.Stat(root)
	if err != nil {
		return
	}

	if !info.IsDir() {
		if w.shouldIgnore(root) {
			return
		}
		if err := fsw.Add(root); err != nil {
			w.log.Debug("watch add failed", zap.String("path", root), zap.Error(err))
		}
		if seed {
			w.track(root)
		}
		return
	}

	filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if w.shouldIgnore(p) {
				return filepath.SkipDir
			}
			if err := fsw.Add(p); err != nil {
				w.log.Debug("watch add failed", zap.String("path", p), zap.Error(err))
			}
			return nil
		}
		if seed && !w.shouldIgnore(p) {
			w.track(p)
		}
		return nil
	})
}

func (w *SmartWatcher) track(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tracked[path] = struct{}{}
}

// loop consumes fsnotify events until the subscription closes.
func (w *SmartWatcher) loop(fsw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Debug("watch error", zap.Error(err))
		}
	}
}

func (w *SmartWatcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if w.shouldIgnore(ev.Name) {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// New directory: watch it and announce its contents.
			w.addRoot(fsw, ev.Name, false)
			filepath.Walk(ev.Name, func(p string, info os.FileInfo, err error) error {
				if err != nil || info.IsDir() || w.shouldIgnore(p) {
					return nil
				}
				w.handleAdd(p)
				return nil
			})
			return
		}
		w.handleAdd(ev.Name)
	case ev.Op.Has(fsnotify.Write):
		w.handleWrite(ev.Name)
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.handleUnlink(ev.Name)
	}
}

// handleAdd fires the new-file callback iff the path is untracked, then
// tracks it. At most one callback per path between resets.
func (w *SmartWatcher) handleAdd(path string) {
	w.mu.Lock()
	_, seen := w.tracked[path]
	w.tracked[path] = struct{}{}
	cb := w.onNewFile
	w.mu.Unlock()

	if !seen && cb != nil {
		cb(path)
	}
}

// handleWrite fires the change callback.
func (w *SmartWatcher) handleWrite(path string) {
	w.mu.Lock()
	cb := w.onChange
	w.mu.Unlock()

	if cb != nil {
		cb(path)
	}
}

// handleUnlink removes the path from the tracked set. Removing an untracked
// path is a no-op.
func (w *SmartWatcher) handleUnlink(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.tracked, path)
}

// shouldIgnore checks if a path should be ignored.
func (w *SmartWatcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else {
				if matched, _ := filepath.Match(pattern, name); matched {
					return true
				}
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(path, segment string) bool {
	if segment == "" {
		return false
	}
	for _, part := range splitPathSegments(path) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
