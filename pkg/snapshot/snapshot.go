// Package snapshot saves and restores observed state trees.
//
// A snapshot is an encoded document stored under a name whose extension
// picks the format ("todos.json", "session.yaml"). Stores are pluggable:
// DiskStore keeps snapshots in a directory and S3Store in a bucket.
//
//	store, _ := snapshot.NewDiskStore(".snapshots")
//	if err := snapshot.Save(ctx, store, "todos.json", state); err != nil {
//	    return err
//	}
//	restored, err := snapshot.Load(ctx, store, "todos.json")
package snapshot

import (
	"context"
	stderrors "errors"
	"path"
	"strings"
	"time"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/document"
)

var (
	// ErrNotFound is returned when no snapshot exists under a name.
	ErrNotFound = stderrors.New("snapshot: not found")

	// ErrInvalidName is returned for names that are empty, contain path
	// separators or lack a document extension.
	ErrInvalidName = stderrors.New("snapshot: invalid name")
)

// Info describes a stored snapshot.
type Info struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	SavedAt time.Time `json:"savedAt"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Put stores data under name, replacing any previous snapshot.
	Put(ctx context.Context, name string, data []byte) error

	// Get returns the data stored under name, or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns every stored snapshot ordered by name.
	List(ctx context.Context) ([]Info, error)

	// Delete removes the snapshot. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error
}

// ValidateName checks that name is a plain file name with a known
// document extension.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name != path.Clean(name) || strings.HasPrefix(name, ".") {
		return ErrInvalidName
	}
	if _, err := document.FormatFromPath(name); err != nil {
		return ErrInvalidName
	}
	return nil
}

// Save encodes root in the format named by the extension of name and
// stores it.
func Save(ctx context.Context, store Store, name string, root any) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	format, _ := document.FormatFromPath(name)
	data, err := document.Encode(root, format)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// Load fetches and decodes the snapshot stored under name. A missing
// snapshot is reported as a D303 error wrapping ErrNotFound.
func Load(ctx context.Context, store Store, name string) (any, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := store.Get(ctx, name)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, errors.New("D303").
				WithDetail("No snapshot named " + name).
				WithSuggestion("Run 'reactivectl snapshot list' to see stored snapshots").
				Wrap(err)
		}
		return nil, err
	}
	format, _ := document.FormatFromPath(name)
	return document.Decode(data, format)
}
