package config

import (
	"strconv"
	"time"
)

// WithClientSecret sets the client signing secret
func WithClientSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.ClientPrivateKey = Secret(secret)
		return nil
	}
}

// WithBucket sets the expected bucket name
func WithBucket(bucket string) Option {
	return func(c *ServerConfig) error {
		c.ExpectedBucketName = bucket
		return nil
	}
}

// WithHost sets the expected v4 host name
func WithHost(host string) Option {
	return func(c *ServerConfig) error {
		c.ExpectedHostName = host
		return nil
	}
}

// WithMaxFileSize enables size enforcement
func WithMaxFileSize(size int64) Option {
	return func(c *ServerConfig) error {
		c.MaxFileSize = strconv.FormatInt(size, 10)
		return nil
	}
}

// WithStorageBackend selects "s3" or "memory"
func WithStorageBackend(name string) Option {
	return func(c *ServerConfig) error {
		c.StorageBackend = name
		return nil
	}
}

// WithTempLinkTTL overrides the temporary link validity window
func WithTempLinkTTL(ttl time.Duration) Option {
	return func(c *ServerConfig) error {
		c.TempLinkTTL = ttl
		return nil
	}
}
