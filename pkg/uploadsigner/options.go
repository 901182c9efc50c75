package uploadsigner

import (
	"log/slog"
	"time"
)

// SignerOption is a functional option for configuring a Signer
type SignerOption func(*Signer)

// WithClientSecret sets the secret used for every HMAC computed by the signer
func WithClientSecret(secret string) SignerOption {
	return func(s *Signer) {
		s.clientSecret = []byte(secret)
	}
}

// WithExpectedBucket sets the bucket policies and v2 REST requests must target
func WithExpectedBucket(bucket string) SignerOption {
	return func(s *Signer) {
		s.expectedBucket = bucket
	}
}

// WithExpectedHost sets the host v4 REST requests must target
func WithExpectedHost(host string) SignerOption {
	return func(s *Signer) {
		s.expectedHost = host
	}
}

// WithPolicyMaxSize sets the content-length-range maximum policies must declare.
// Without it the range condition is not checked.
func WithPolicyMaxSize(size int64) SignerOption {
	return func(s *Signer) {
		s.maxSize = &size
	}
}

// WithSignerLogger sets the logger used by the signer
func WithSignerLogger(logger *slog.Logger) SignerOption {
	return func(s *Signer) {
		s.logger = logger
	}
}

// VerifierOption is a functional option for configuring a Verifier
type VerifierOption func(*Verifier)

// WithMaxSize enables the post-upload size check
func WithMaxSize(size int64) VerifierOption {
	return func(v *Verifier) {
		v.maxSize = &size
	}
}

// WithLinkTTL sets how long temporary links stay valid.
// Default is 15 minutes.
func WithLinkTTL(ttl time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.linkTTL = ttl
	}
}

// WithStorageTimeout bounds every call to the storage collaborator.
// Default is 10 seconds.
func WithStorageTimeout(timeout time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.timeout = timeout
	}
}

// WithVerifierLogger sets the logger used by the verifier
func WithVerifierLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}
