package memory

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/tendant/upload-signer/pkg/uploadsigner"
)

// Backend is an in-memory implementation of the uploadsigner.ObjectStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	now     func() time.Time
}

// Compile-time check to ensure Backend implements uploadsigner.ObjectStore
var _ uploadsigner.ObjectStore = (*Backend)(nil)

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
		now:     time.Now,
	}
}

func objectPath(bucket, key string) string {
	return bucket + "/" + key
}

// Put stores data under bucket/key, standing in for a browser upload
func (b *Backend) Put(bucket, key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectPath(bucket, key)] = data
}

// Exists reports whether bucket/key is stored
func (b *Backend) Exists(bucket, key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.objects[objectPath(bucket, key)]
	return ok
}

// HeadObjectSize returns the size of a stored object
func (b *Backend) HeadObjectSize(ctx context.Context, bucket, key string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.objects[objectPath(bucket, key)]
	if !ok {
		return 0, uploadsigner.ErrObjectNotFound
	}
	return int64(len(data)), nil
}

// DeleteObject removes an object. Deleting a missing object is not an error,
// matching S3 semantics.
func (b *Backend) DeleteObject(ctx context.Context, bucket, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, objectPath(bucket, key))
	return nil
}

// PresignGet returns a memory:// URL carrying the expiry timestamp
func (b *Backend) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if !b.Exists(bucket, key) {
		return "", uploadsigner.ErrObjectNotFound
	}
	u := url.URL{
		Scheme:   "memory",
		Host:     bucket,
		Path:     "/" + key,
		RawQuery: fmt.Sprintf("expires=%d", b.now().Add(ttl).Unix()),
	}
	return u.String(), nil
}
