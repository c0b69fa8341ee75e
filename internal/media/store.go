// Package media stores post thumbnails and user avatars in an object store
// and records URL references on the owning records.
package media

import (
	"context"
)

// Store is an object store for media blobs. Put returns the public URL of
// the stored object. Delete accepts a URL previously returned by Put;
// foreign URLs (external avatars, the default asset) are not an error and
// are left alone, which callers rely on for best-effort cleanup.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	// KeyFor maps a URL back to the object key. ok is false for URLs the
	// store does not own.
	KeyFor(url string) (key string, ok bool)
}
