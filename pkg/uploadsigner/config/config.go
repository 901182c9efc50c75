package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/upload-signer/pkg/uploadsigner"
	"github.com/tendant/upload-signer/pkg/uploadsigner/storage/memory"
	s3storage "github.com/tendant/upload-signer/pkg/uploadsigner/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		LogFormat:      "text",
		AllowedOrigins: "*",
		BucketRegion:   "us-east-1",
		BucketVersion:  "2006-03-01",
		StorageBackend: "s3",
		TempLinkTTL:    uploadsigner.DefaultLinkTTL,
		StorageTimeout: uploadsigner.DefaultStorageTimeout,
	}
}

// Secret is a string that never renders its value
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// LogValue keeps secrets out of slog output
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// ServerConfig represents server configuration for the upload signer.
// It is read once at startup and not modified afterwards.
type ServerConfig struct {
	Port           string `env:"PORT" env-default:"8080"`
	Environment    string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing
	LogFormat      string `env:"LOG_FORMAT" env-default:"text"`         // text, json
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`

	// Signing
	ClientPrivateKey   Secret `env:"AWS_CLIENT_SECRET_KEY"`
	ExpectedBucketName string `env:"S3_BUCKET_NAME"`
	ExpectedHostName   string `env:"S3_HOST_NAME"` // v4 REST signing only
	MaxFileSize        string `env:"S3_MAX_FILE_SIZE"`

	// Storage service
	ServerPublicKey  string `env:"AWS_SERVER_PUBLIC_KEY"`
	ServerPrivateKey Secret `env:"AWS_SERVER_PRIVATE_KEY"`
	BucketRegion     string `env:"S3_BUCKET_REGION" env-default:"us-east-1"`
	BucketVersion    string `env:"S3_BUCKET_VERSION" env-default:"2006-03-01"`
	StorageEndpoint  string `env:"S3_ENDPOINT"`
	UsePathStyle     bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	StorageBackend   string `env:"STORAGE_BACKEND" env-default:"s3"` // s3, memory

	TempLinkTTL    time.Duration `env:"TEMP_LINK_TTL" env-default:"15m"`
	StorageTimeout time.Duration `env:"STORAGE_TIMEOUT" env-default:"10s"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.ClientPrivateKey == "" {
		return errors.New("client private key is required")
	}

	if c.ExpectedBucketName == "" {
		return errors.New("expected bucket name is required")
	}

	if _, _, err := c.MaxSize(); err != nil {
		return err
	}

	if c.BucketVersion == "" {
		return errors.New("bucket version is required")
	}

	if c.StorageBackend != "s3" && c.StorageBackend != "memory" {
		return errors.New("storage_backend must be 's3' or 'memory'")
	}

	if c.TempLinkTTL <= 0 {
		return errors.New("temp link ttl must be positive")
	}

	if c.StorageTimeout <= 0 {
		return errors.New("storage timeout must be positive")
	}

	return nil
}

// MaxSize parses MaxFileSize. ok is false when no limit is configured.
func (c *ServerConfig) MaxSize() (size int64, ok bool, err error) {
	raw := strings.TrimSpace(c.MaxFileSize)
	if raw == "" {
		return 0, false, nil
	}
	size, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid max file size %q: %w", raw, err)
	}
	if size < 0 {
		return 0, false, fmt.Errorf("invalid max file size %q: must not be negative", raw)
	}
	return size, true, nil
}

// Origins returns the configured CORS origins
func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// BuildSigner creates the Signer described by the configuration
func (c *ServerConfig) BuildSigner(logger *slog.Logger) *uploadsigner.Signer {
	opts := []uploadsigner.SignerOption{
		uploadsigner.WithClientSecret(string(c.ClientPrivateKey)),
		uploadsigner.WithExpectedBucket(c.ExpectedBucketName),
		uploadsigner.WithExpectedHost(c.ExpectedHostName),
		uploadsigner.WithSignerLogger(logger),
	}
	if size, ok, _ := c.MaxSize(); ok {
		opts = append(opts, uploadsigner.WithPolicyMaxSize(size))
	}
	return uploadsigner.NewSigner(opts...)
}

// BuildVerifier creates the Verifier and its storage backend
func (c *ServerConfig) BuildVerifier(logger *slog.Logger) (*uploadsigner.Verifier, error) {
	store, err := c.buildObjectStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend: %w", err)
	}

	opts := []uploadsigner.VerifierOption{
		uploadsigner.WithLinkTTL(c.TempLinkTTL),
		uploadsigner.WithStorageTimeout(c.StorageTimeout),
		uploadsigner.WithVerifierLogger(logger),
	}
	if size, ok, _ := c.MaxSize(); ok {
		opts = append(opts, uploadsigner.WithMaxSize(size))
	}
	return uploadsigner.NewVerifier(store, opts...), nil
}

func (c *ServerConfig) buildObjectStore() (uploadsigner.ObjectStore, error) {
	switch c.StorageBackend {
	case "memory":
		return memory.New(), nil
	case "s3":
		return s3storage.New(c.S3Config())
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.StorageBackend)
	}
}

// S3Config returns the storage service settings
func (c *ServerConfig) S3Config() s3storage.Config {
	return s3storage.Config{
		Region:          c.BucketRegion,
		AccessKeyID:     c.ServerPublicKey,
		SecretAccessKey: string(c.ServerPrivateKey),
		Endpoint:        c.StorageEndpoint,
		UsePathStyle:    c.UsePathStyle,
	}
}
