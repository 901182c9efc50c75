package uploadsigner

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNoClientSecret is returned when signing without a configured client secret
	ErrNoClientSecret = errors.New("uploadsigner: no client secret configured")

	// ErrMalformedInput indicates the request body could not be decoded
	ErrMalformedInput = errors.New("uploadsigner: malformed input")

	// ErrMalformedCredentialScope indicates a credential scope without the
	// <date>/<region>/s3/aws4_request structure
	ErrMalformedCredentialScope = errors.New("uploadsigner: malformed credential scope")

	// ErrFileTooBig indicates an uploaded object exceeded the configured max size
	// and was removed from storage
	ErrFileTooBig = errors.New("uploadsigner: file is too big")

	// ErrObjectNotFound indicates the storage collaborator has no such object
	ErrObjectNotFound = errors.New("object not found")
)

// StorageError represents a failed call to the storage collaborator
type StorageError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsClientError returns true if the error was caused by the request itself
// and must not be retried
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrMalformedCredentialScope)
}

// IsStorageError returns true if the error came from the storage collaborator
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
