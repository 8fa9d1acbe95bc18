package workspace

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultMaxResults bounds search result counts when the caller passes no
// explicit limit.
const DefaultMaxResults = 100

// Index is a live file index of one workspace root. Files ignored by
// .gitignore rules (including nested .gitignore files) are excluded. The
// index tracks filesystem changes through fsnotify; a structural change
// to any .gitignore file triggers a full rebuild.
type Index struct {
	root string

	mu    sync.RWMutex
	paths *Trie[string]
	names *Trie[[]string]

	// gitignore matchers keyed by the directory (relative, "" for root)
	// their rules apply under.
	ignores map[string]*ignore.GitIgnore

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewIndex builds an index of root and starts watching it for changes.
// Close must be called to release the watcher.
func NewIndex(root string) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %q is not a directory", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	idx := &Index{
		root:    abs,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	if err := idx.rebuild(); err != nil {
		watcher.Close()
		return nil, err
	}

	idx.wg.Add(1)
	go idx.watch()
	return idx, nil
}

// Root returns the absolute workspace root.
func (i *Index) Root() string { return i.root }

// Close stops the watcher and waits for the event loop to exit.
func (i *Index) Close() error {
	close(i.done)
	err := i.watcher.Close()
	i.wg.Wait()
	return err
}

// Len reports the number of indexed files.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.paths.Len()
}

// Contains reports whether the relative path is indexed.
func (i *Index) Contains(relPath string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.paths.Search(filepath.ToSlash(relPath))
	return ok
}

// SearchPathPrefix returns indexed paths starting with prefix, sorted,
// capped at limit (DefaultMaxResults when limit <= 0).
func (i *Index) SearchPathPrefix(prefix string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	i.mu.RLock()
	out := i.paths.StartsWith(filepath.ToSlash(prefix), limit)
	i.mu.RUnlock()

	sort.Strings(out)
	return out
}

// SearchNamePrefix returns the paths of files whose base name starts with
// prefix, sorted, capped at limit (DefaultMaxResults when limit <= 0).
func (i *Index) SearchNamePrefix(prefix string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	i.mu.RLock()
	groups := i.names.StartsWith(prefix, 0)
	i.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, paths := range groups {
		for _, p := range paths {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// rebuild walks the workspace from scratch, reloading gitignore rules and
// resetting the watch set.
func (i *Index) rebuild() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.paths = NewTrie[string]()
	i.names = NewTrie[[]string]()
	i.ignores = make(map[string]*ignore.GitIgnore)

	err := filepath.WalkDir(i.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(i.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = ""
		}

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if rel != "" && i.ignored(rel+"/") {
				return filepath.SkipDir
			}
			i.loadGitignore(path, rel)
			if err := i.watcher.Add(path); err != nil {
				slog.Warn("Failed to watch directory", "path", path, "error", err)
			}
			return nil
		}

		if i.ignored(rel) {
			return nil
		}
		i.insertLocked(rel)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index workspace: %w", err)
	}
	return nil
}

func (i *Index) loadGitignore(dir, rel string) {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		slog.Warn("Failed to parse gitignore", "path", path, "error", err)
		return
	}
	i.ignores[rel] = gi
}

// ignored checks relPath against every gitignore whose directory is an
// ancestor of the path. relPath uses slashes; directories carry a
// trailing slash so directory-only patterns match.
func (i *Index) ignored(relPath string) bool {
	for dir, gi := range i.ignores {
		sub := relPath
		if dir != "" {
			if !strings.HasPrefix(relPath, dir+"/") {
				continue
			}
			sub = relPath[len(dir)+1:]
		}
		if gi.MatchesPath(sub) {
			return true
		}
	}
	return false
}

func (i *Index) insertLocked(rel string) {
	i.paths.Insert(rel, rel)
	name := rel
	if idx := strings.LastIndexByte(rel, '/'); idx >= 0 {
		name = rel[idx+1:]
	}
	group, _ := i.names.Search(name)
	i.names.Insert(name, append(group, rel))
}

func (i *Index) removeLocked(rel string) {
	if !i.paths.Delete(rel) {
		return
	}
	name := rel
	if idx := strings.LastIndexByte(rel, '/'); idx >= 0 {
		name = rel[idx+1:]
	}
	group, ok := i.names.Search(name)
	if !ok {
		return
	}
	kept := group[:0]
	for _, p := range group {
		if p != rel {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		i.names.Delete(name)
	} else {
		i.names.Insert(name, kept)
	}
}

// removeSubtreeLocked drops every indexed path under the directory rel.
func (i *Index) removeSubtreeLocked(rel string) {
	for _, p := range i.paths.StartsWith(rel+"/", 0) {
		i.removeLocked(p)
	}
}

func (i *Index) watch() {
	defer i.wg.Done()
	for {
		select {
		case <-i.done:
			return
		case event, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			i.handleEvent(event)
		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Workspace watcher error", "error", err)
		}
	}
}

func (i *Index) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(i.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	rel = filepath.ToSlash(rel)

	// Any gitignore change invalidates matcher state for whole subtrees.
	if filepath.Base(event.Name) == ".gitignore" {
		if err := i.rebuild(); err != nil {
			slog.Error("Failed to rebuild workspace index", "error", err)
		}
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// New directories need their own watch and may already
			// contain files.
			if err := i.rebuild(); err != nil {
				slog.Error("Failed to rebuild workspace index", "error", err)
			}
			return
		}
		i.mu.Lock()
		if !i.ignored(rel) {
			i.insertLocked(rel)
		}
		i.mu.Unlock()
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		i.mu.Lock()
		i.removeLocked(rel)
		i.removeSubtreeLocked(rel)
		i.mu.Unlock()
	}
}
