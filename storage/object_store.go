// Package storage abstracts the external object-storage provider.
//
// Blobs are addressed by an opaque storage key of the form
// "<owner id>/<original file name>". The provider is any S3-compatible
// service; reads go through time-limited signed URLs (leases).
package storage

import (
	"context"
	"io"
	"time"
)

// AccessTTL is how long a signed read URL stays valid after issuance.
const AccessTTL = time.Hour

// ObjectStore is the gateway to the external blob store.
type ObjectStore interface {
	// Put writes the blob under key, overwriting any existing object.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// Delete removes the blob. Deleting a missing key is not an error,
	// which keeps cascading-delete retries idempotent.
	Delete(ctx context.Context, key string) error

	// Rename moves a blob to a new key. The destination is verified to
	// exist after the copy; the source is only removed on success.
	Rename(ctx context.Context, oldKey, newKey string) error

	// SignedURL issues a read lease for the blob valid for ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
