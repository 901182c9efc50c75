package uploadsigner

import (
	"context"
	"time"
)

// ObjectStore is the storage collaborator used after an upload completes.
// Implementations must not retry DeleteObject on their own.
type ObjectStore interface {
	// HeadObjectSize returns the stored size of the object in bytes
	HeadObjectSize(ctx context.Context, bucket, key string) (int64, error)

	// DeleteObject removes the object
	DeleteObject(ctx context.Context, bucket, key string) error

	// PresignGet returns a time-limited GET URL for the object
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
