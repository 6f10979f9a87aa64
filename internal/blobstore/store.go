package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound reports that the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// Store is the object storage surface used for hearing artifacts.
type Store interface {
	// Exists reports whether the object at key is present.
	Exists(ctx context.Context, key string) (bool, error)
	// Get returns the full contents of the object at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes data to key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte) error
	// List returns all object keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
