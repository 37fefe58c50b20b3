// Package walker traverses a remote directory tree depth-first, listing
// each directory exactly once and visiting children in sorted name order so
// traversal is deterministic regardless of server listing order.
package walker

import (
	"context"
	"path"
	"sort"

	"davtidy/pkg/sanitizer"
	"davtidy/pkg/webdav"
)

// VisitFunc decides what happens to one entry and returns the entry's
// authoritative name afterwards: the new name when a rename was applied,
// the current name otherwise. The walker descends into directories under
// the returned name, so a directory renamed by the visitor is listed under
// its post-rename path. siblings holds the names present or already
// claimed in the entry's directory.
type VisitFunc func(ctx context.Context, entry webdav.Entry, siblings *sanitizer.SiblingSet) (finalName string, err error)

// ListErrorFunc is consulted when listing a directory fails. Returning a
// non-nil error aborts the walk; returning nil skips the subtree and
// continues. The default policy aborts: an unlisted subtree could mean
// unsanitized names remain.
type ListErrorFunc func(dir string, err error) error

// Walker drives the traversal over an injected lister.
type Walker struct {
	lister      webdav.Lister
	onListError ListErrorFunc
}

// New creates a Walker. onListError may be nil for the abort-on-error
// default.
func New(lister webdav.Lister, onListError ListErrorFunc) *Walker {
	if onListError == nil {
		onListError = func(_ string, err error) error { return err }
	}
	return &Walker{lister: lister, onListError: onListError}
}

// Walk visits every entry below root, depth-first. Cancellation is checked
// before each remote call; an in-flight move is never torn down halfway
// because each rename is a single remote operation.
func (w *Walker) Walk(ctx context.Context, root string, visit VisitFunc) error {
	return w.walkDir(ctx, root, visit)
}

func (w *Walker) walkDir(ctx context.Context, dir string, visit VisitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := w.lister.List(ctx, dir)
	if err != nil {
		return w.onListError(dir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	siblings := sanitizer.NewSiblingSet()
	for _, e := range entries {
		siblings.Add(e.Name)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		finalName, err := visit(ctx, e, siblings)
		if err != nil {
			return err
		}

		if !e.IsDir {
			continue
		}
		if err := w.walkDir(ctx, path.Join(dir, finalName), visit); err != nil {
			return err
		}
	}

	return nil
}
