// Package webdav wraps the WebDAV transport behind narrow interfaces so the
// walker and planner never see HTTP. The concrete client is backed by
// github.com/studio-b12/gowebdav; remote errors are mapped onto a small
// taxonomy the caller can branch on with errors.Is.
package webdav

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/studio-b12/gowebdav"
)

// Entry is one remote file or folder.
type Entry struct {
	Path       string // slash-separated, relative to the server base
	ParentPath string
	Name       string // final path segment
	IsDir      bool
}

// Lister lists the immediate children of a remote directory.
type Lister interface {
	List(ctx context.Context, dir string) ([]Entry, error)
}

// Mover renames a remote resource. With overwrite unset, a move onto an
// existing target fails with ErrConflict.
type Mover interface {
	Move(ctx context.Context, oldPath, newPath string, overwrite bool) error
}

// Stater probes a single remote path.
type Stater interface {
	Stat(ctx context.Context, p string) (Entry, error)
}

// Client is the full transport surface consumed by a sanitizer run.
type Client interface {
	Lister
	Mover
	Stater
}

// Options configure the gowebdav-backed client.
type Options struct {
	Address  string // WebDAV base URL, e.g. https://cloud.example.com/remote.php/dav/files/user/
	Username string
	Password string
	Timeout  time.Duration // per-request; zero means no timeout
}

type davClient struct {
	c *gowebdav.Client
}

// NewClient builds a Client talking to a real WebDAV server.
func NewClient(opts Options) Client {
	c := gowebdav.NewClient(opts.Address, opts.Username, opts.Password)
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	return &davClient{c: c}
}

func (d *davClient) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := d.c.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, mapError(err))
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, Entry{
			Path:       path.Join(dir, fi.Name()),
			ParentPath: dir,
			Name:       fi.Name(),
			IsDir:      fi.IsDir(),
		})
	}

	return entries, nil
}

func (d *davClient) Move(ctx context.Context, oldPath, newPath string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := d.c.Rename(oldPath, newPath, overwrite); err != nil {
		return fmt.Errorf("move %s to %s: %w", oldPath, newPath, mapError(err))
	}

	return nil
}

func (d *davClient) Stat(ctx context.Context, p string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	fi, err := d.c.Stat(p)
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", p, mapError(err))
	}

	cleaned := path.Clean("/" + p)
	return Entry{
		Path:       cleaned,
		ParentPath: path.Dir(cleaned),
		Name:       path.Base(cleaned),
		IsDir:      fi.IsDir(),
	}, nil
}
