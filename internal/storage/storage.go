package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MaxAttempts bounds how many fresh identifiers Allocate draws before giving up.
const MaxAttempts = 5

var (
	ErrExhausted    = errors.New("no unique storage path available")
	ErrNotAllocated = errors.New("storage directory was not created")
	ErrInvalidID    = errors.New("invalid storage id")
)

// Handle is a request-scoped storage directory.
type Handle struct {
	ID   string `json:"id"`
	Path string `json:"-"`
}

// File returns the path of name inside the handle's directory.
func (h Handle) File(name string) string {
	return filepath.Join(h.Path, name)
}

// Allocator creates one exclusive directory per request under Root.
type Allocator struct {
	root  string
	newID func() string
}

// NewAllocator returns an allocator rooted at root. The root directory must already exist.
func NewAllocator(root string) *Allocator {
	return &Allocator{
		root:  root,
		newID: func() string { return uuid.New().String() },
	}
}

// WithIDSource replaces the identifier generator.
func (a *Allocator) WithIDSource(newID func() string) *Allocator {
	a.newID = newID
	return a
}

// Root returns the directory every handle is created under.
func (a *Allocator) Root() string {
	return a.root
}

// Allocate creates root/<id> for a fresh random id, retrying on collision.
func (a *Allocator) Allocate(ctx context.Context) (Handle, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Handle{}, err
		}

		id := a.newID()
		path := filepath.Join(a.root, id)

		err := os.Mkdir(path, 0o755)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return Handle{}, fmt.Errorf("create storage directory: %w", err)
		}

		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return Handle{}, fmt.Errorf("%w: %s", ErrNotAllocated, id)
		}
		return Handle{ID: id, Path: path}, nil
	}
	return Handle{}, fmt.Errorf("%w after %d attempts", ErrExhausted, MaxAttempts)
}

// Open returns the handle for an existing request directory.
func (a *Allocator) Open(id string) (Handle, error) {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return Handle{}, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	path := filepath.Join(a.root, id)
	info, err := os.Stat(path)
	if err != nil {
		return Handle{}, err
	}
	if !info.IsDir() {
		return Handle{}, fmt.Errorf("%w: %s", ErrNotAllocated, id)
	}
	return Handle{ID: id, Path: path}, nil
}
