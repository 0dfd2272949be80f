// Package watch monitors the workspace for out-of-editor file changes,
// such as branch switches or code generators, and reports them so
// inter-file diagnostics can be re-pulled.
package watch

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ignoredDirs are directory names never worth watching.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"vendor":       {},
	"target":       {},
	"dist":         {},
}

// Watcher watches workspace directories recursively and invokes a
// callback for every relevant file change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)
}

// New creates a watcher. onChange runs on the watcher's goroutine and
// must not block.
func New(onChange func(path string)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{watcher: watcher, onChange: onChange}
	go w.run()
	return w, nil
}

// AddRecursive watches root and every non-ignored directory below it.
// Directories created later are picked up as they appear.
func (w *Watcher) AddRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && ignoreDir(entry.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// run dispatches filesystem events until the watcher closes.
func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				// New directories join the watch set so changes inside them
				// are not missed.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !ignoreDir(filepath.Base(event.Name)) {
						if err := w.AddRecursive(event.Name); err != nil {
							log.Printf("failed to watch new directory %s: %v", event.Name, err)
						}
					}
					continue
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ignoreFile(event.Name) {
				continue
			}
			w.onChange(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// Close stops the watcher and cleans up resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func ignoreDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, found := ignoredDirs[name]
	return found
}

// ignoreFile filters out editor droppings and anything inside an ignored
// directory.
func ignoreFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if ignoreDir(part) && part != "." && part != ".." {
			return true
		}
	}
	return false
}
