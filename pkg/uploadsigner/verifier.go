package uploadsigner

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultLinkTTL is the validity window of temporary links
	DefaultLinkTTL = 15 * time.Minute

	// DefaultStorageTimeout bounds each storage call
	DefaultStorageTimeout = 10 * time.Second

	tracerName = "github.com/tendant/upload-signer/pkg/uploadsigner"
)

// UploadNotification is sent by the uploader once the storage service
// accepted the file. Every field is client supplied.
type UploadNotification struct {
	Bucket                  string
	Key                     string
	Filename                string
	IsBrowserPreviewCapable bool
}

// VerificationResult is returned for an accepted upload
type VerificationResult struct {
	TempLink     string `json:"tempLink"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Verifier re-checks uploaded objects against the configured size limit and
// hands out temporary links
type Verifier struct {
	store   ObjectStore
	maxSize *int64
	linkTTL time.Duration
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewVerifier creates a Verifier backed by store
func NewVerifier(store ObjectStore, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		store:   store,
		linkTTL: DefaultLinkTTL,
		timeout: DefaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	v.tracer = otel.Tracer(tracerName)
	return v
}

// Verify checks the stored size of the notified object. Oversized objects are
// deleted and ErrFileTooBig is returned. Otherwise a temporary link is
// returned, echoed as the thumbnail URL when ShouldIncludeThumbnail holds.
func (v *Verifier) Verify(ctx context.Context, n UploadNotification) (*VerificationResult, error) {
	ctx, span := v.tracer.Start(ctx, "Verifier.Verify", trace.WithAttributes(
		attribute.String("bucket", n.Bucket),
		attribute.String("key", n.Key),
	))
	defer span.End()

	if v.maxSize != nil {
		size, err := v.headObjectSize(ctx, n.Bucket, n.Key)
		if err != nil {
			return nil, v.fail(span, err)
		}
		span.SetAttributes(attribute.Int64("size", size))

		if size > *v.maxSize {
			v.logger.Warn("Uploaded object exceeds max size, deleting",
				"bucket", n.Bucket, "key", n.Key, "size", size, "max_size", *v.maxSize)
			if err := v.deleteObject(ctx, n.Bucket, n.Key); err != nil {
				return nil, v.fail(span, err)
			}
			span.SetStatus(codes.Error, "file too big")
			return nil, ErrFileTooBig
		}
	}

	link, err := v.presignGet(ctx, n.Bucket, n.Key)
	if err != nil {
		return nil, v.fail(span, err)
	}

	result := &VerificationResult{TempLink: link}
	if ShouldIncludeThumbnail(n.Filename, n.IsBrowserPreviewCapable) {
		result.ThumbnailURL = link
	}

	v.logger.Info("Upload verified", "bucket", n.Bucket, "key", n.Key)
	return result, nil
}

// Delete removes an uploaded object on behalf of the uploader
func (v *Verifier) Delete(ctx context.Context, bucket, key string) error {
	ctx, span := v.tracer.Start(ctx, "Verifier.Delete", trace.WithAttributes(
		attribute.String("bucket", bucket),
		attribute.String("key", key),
	))
	defer span.End()

	if err := v.deleteObject(ctx, bucket, key); err != nil {
		return v.fail(span, err)
	}
	v.logger.Info("Upload deleted", "bucket", bucket, "key", key)
	return nil
}

func (v *Verifier) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (v *Verifier) headObjectSize(ctx context.Context, bucket, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	size, err := v.store.HeadObjectSize(ctx, bucket, key)
	if err != nil {
		return 0, &StorageError{Op: "head", Bucket: bucket, Key: key, Err: err}
	}
	return size, nil
}

func (v *Verifier) deleteObject(ctx context.Context, bucket, key string) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if err := v.store.DeleteObject(ctx, bucket, key); err != nil {
		return &StorageError{Op: "delete", Bucket: bucket, Key: key, Err: err}
	}
	return nil
}

func (v *Verifier) presignGet(ctx context.Context, bucket, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	link, err := v.store.PresignGet(ctx, bucket, key, v.linkTTL)
	if err != nil {
		return "", &StorageError{Op: "presign", Bucket: bucket, Key: key, Err: err}
	}
	return link, nil
}
