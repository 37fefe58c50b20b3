// Package testutil provides an in-memory stand-in for the WebDAV transport
// so walker, planner, and usecase tests run without a server.
package testutil

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"davtidy/pkg/webdav"
)

// MoveCall records one Move invocation.
type MoveCall struct {
	From      string
	To        string
	Overwrite bool
}

// FakeRemote is an in-memory remote filesystem implementing webdav.Client.
// Move semantics mirror a WebDAV MOVE: moving onto an existing target fails
// with webdav.ErrConflict unless overwrite is set, and moving a directory
// carries its subtree along.
type FakeRemote struct {
	mu       sync.Mutex
	children map[string]map[string]bool // dir path -> child name -> isDir

	Moves    []MoveCall
	ListErrs map[string]error            // dir -> error returned by List
	MoveErr  func(from, to string) error // optional per-move failure injection
}

// NewFakeRemote creates a fake with an empty root directory.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		children: map[string]map[string]bool{"/": {}},
		ListErrs: map[string]error{},
	}
}

func clean(p string) string {
	return path.Clean("/" + p)
}

// MkdirAll creates a directory and its parents.
func (f *FakeRemote) MkdirAll(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdirAllLocked(clean(p))
}

func (f *FakeRemote) mkdirAllLocked(p string) {
	if p == "/" {
		return
	}
	parent := path.Dir(p)
	f.mkdirAllLocked(parent)
	f.children[parent][path.Base(p)] = true
	if f.children[p] == nil {
		f.children[p] = map[string]bool{}
	}
}

// AddFile creates a file, creating parent directories as needed.
func (f *FakeRemote) AddFile(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	f.mkdirAllLocked(path.Dir(p))
	f.children[path.Dir(p)][path.Base(p)] = false
}

// Exists reports whether a file or directory exists at p.
func (f *FakeRemote) Exists(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.lookupLocked(clean(p))
	return ok
}

// Names returns the sorted child names of dir.
func (f *FakeRemote) Names(dir string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.children[clean(dir)]))
	for name := range f.children[clean(dir)] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *FakeRemote) lookupLocked(p string) (isDir bool, ok bool) {
	if p == "/" {
		return true, true
	}
	siblings, ok := f.children[path.Dir(p)]
	if !ok {
		return false, false
	}
	isDir, ok = siblings[path.Base(p)]
	return isDir, ok
}

// List implements webdav.Lister.
func (f *FakeRemote) List(_ context.Context, dir string) ([]webdav.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir = clean(dir)
	if err := f.ListErrs[dir]; err != nil {
		return nil, err
	}

	kids, ok := f.children[dir]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", dir, webdav.ErrNotFound)
	}

	entries := make([]webdav.Entry, 0, len(kids))
	for name, isDir := range kids {
		entries = append(entries, webdav.Entry{
			Path:       path.Join(dir, name),
			ParentPath: dir,
			Name:       name,
			IsDir:      isDir,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Stat implements webdav.Stater.
func (f *FakeRemote) Stat(_ context.Context, p string) (webdav.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	isDir, ok := f.lookupLocked(p)
	if !ok {
		return webdav.Entry{}, fmt.Errorf("stat %s: %w", p, webdav.ErrNotFound)
	}

	return webdav.Entry{
		Path:       p,
		ParentPath: path.Dir(p),
		Name:       path.Base(p),
		IsDir:      isDir,
	}, nil
}

// Move implements webdav.Mover.
func (f *FakeRemote) Move(_ context.Context, oldPath, newPath string, overwrite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	oldPath, newPath = clean(oldPath), clean(newPath)
	f.Moves = append(f.Moves, MoveCall{From: oldPath, To: newPath, Overwrite: overwrite})

	if f.MoveErr != nil {
		if err := f.MoveErr(oldPath, newPath); err != nil {
			return err
		}
	}

	isDir, ok := f.lookupLocked(oldPath)
	if !ok {
		return fmt.Errorf("move %s: %w", oldPath, webdav.ErrNotFound)
	}
	if _, exists := f.lookupLocked(newPath); exists {
		if !overwrite {
			return fmt.Errorf("move %s to %s: %w", oldPath, newPath, webdav.ErrConflict)
		}
		f.removeLocked(newPath)
	}

	delete(f.children[path.Dir(oldPath)], path.Base(oldPath))
	f.children[path.Dir(newPath)][path.Base(newPath)] = isDir

	if isDir {
		// Re-key the moved subtree.
		oldPrefix := oldPath + "/"
		moved := map[string]map[string]bool{}
		for dir, kids := range f.children {
			if dir == oldPath || strings.HasPrefix(dir, oldPrefix) {
				moved[newPath+dir[len(oldPath):]] = kids
				delete(f.children, dir)
			}
		}
		for dir, kids := range moved {
			f.children[dir] = kids
		}
	}

	return nil
}

func (f *FakeRemote) removeLocked(p string) {
	delete(f.children[path.Dir(p)], path.Base(p))
	prefix := p + "/"
	for dir := range f.children {
		if dir == p || strings.HasPrefix(dir, prefix) {
			delete(f.children, dir)
		}
	}
}
