package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithOptions(t *testing.T) {
	cfg, err := Load(
		WithClientSecret("client-secret"),
		WithBucket("uploads"),
		WithHost("uploads.s3.amazonaws.com"),
		WithMaxFileSize(5242880),
		WithStorageBackend("memory"),
		WithTempLinkTTL(5*time.Minute),
	)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "uploads", cfg.ExpectedBucketName)
	assert.Equal(t, "us-east-1", cfg.BucketRegion)
	assert.Equal(t, "2006-03-01", cfg.BucketVersion)
	assert.Equal(t, 5*time.Minute, cfg.TempLinkTTL)

	size, ok, err := cfg.MaxSize()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5242880), size)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AWS_CLIENT_SECRET_KEY", "client-secret")
	t.Setenv("S3_BUCKET_NAME", "uploads")
	t.Setenv("S3_HOST_NAME", "uploads.s3.amazonaws.com")
	t.Setenv("S3_MAX_FILE_SIZE", "1048576")
	t.Setenv("AWS_SERVER_PUBLIC_KEY", "AKIDEXAMPLE")
	t.Setenv("AWS_SERVER_PRIVATE_KEY", "server-secret")
	t.Setenv("S3_BUCKET_REGION", "eu-west-1")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("TEMP_LINK_TTL", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(WithEnv())
	require.NoError(t, err)

	assert.Equal(t, Secret("client-secret"), cfg.ClientPrivateKey)
	assert.Equal(t, "uploads.s3.amazonaws.com", cfg.ExpectedHostName)
	assert.Equal(t, "eu-west-1", cfg.BucketRegion)
	assert.Equal(t, 2*time.Minute, cfg.TempLinkTTL)
	assert.Equal(t, 10*time.Second, cfg.StorageTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Origins())

	s3cfg := cfg.S3Config()
	assert.Equal(t, "AKIDEXAMPLE", s3cfg.AccessKeyID)
	assert.Equal(t, "server-secret", s3cfg.SecretAccessKey)
	assert.Equal(t, "http://localhost:9000", s3cfg.Endpoint)
	assert.True(t, s3cfg.UsePathStyle)
}

func TestLoadOptionsOverrideEnv(t *testing.T) {
	t.Setenv("AWS_CLIENT_SECRET_KEY", "client-secret")
	t.Setenv("S3_BUCKET_NAME", "uploads")

	cfg, err := Load(WithEnv(), WithBucket("override"), WithStorageBackend("memory"))
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.ExpectedBucketName)
	assert.Equal(t, "memory", cfg.StorageBackend)
}

func TestValidate(t *testing.T) {
	valid := func() ServerConfig {
		cfg := defaults()
		cfg.ClientPrivateKey = "client-secret"
		cfg.ExpectedBucketName = "uploads"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"valid", func(*ServerConfig) {}, ""},
		{"missing port", func(c *ServerConfig) { c.Port = "" }, "port is required"},
		{"missing client key", func(c *ServerConfig) { c.ClientPrivateKey = "" }, "client private key is required"},
		{"missing bucket", func(c *ServerConfig) { c.ExpectedBucketName = "" }, "expected bucket name is required"},
		{"non numeric max size", func(c *ServerConfig) { c.MaxFileSize = "5MB" }, "invalid max file size"},
		{"negative max size", func(c *ServerConfig) { c.MaxFileSize = "-1" }, "must not be negative"},
		{"missing bucket version", func(c *ServerConfig) { c.BucketVersion = "" }, "bucket version is required"},
		{"unknown backend", func(c *ServerConfig) { c.StorageBackend = "gcs" }, "storage_backend"},
		{"zero link ttl", func(c *ServerConfig) { c.TempLinkTTL = 0 }, "temp link ttl"},
		{"zero timeout", func(c *ServerConfig) { c.StorageTimeout = 0 }, "storage timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMaxSizeUnset(t *testing.T) {
	cfg := defaults()
	size, ok, err := cfg.MaxSize()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, size)
}

func TestSecretRedaction(t *testing.T) {
	secret := Secret("client-secret")
	assert.Equal(t, "[REDACTED]", secret.String())
	assert.Equal(t, "", Secret("").String())

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("config loaded", "client_key", secret)
	assert.NotContains(t, buf.String(), "client-secret")
	assert.Contains(t, buf.String(), "[REDACTED]")
}

func TestBuild(t *testing.T) {
	cfg, err := Load(
		WithClientSecret("client-secret"),
		WithBucket("uploads"),
		WithMaxFileSize(10),
		WithStorageBackend("memory"),
	)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	signer := cfg.BuildSigner(logger)
	result, err := signer.Sign([]byte(`{"conditions":[{"bucket":"uploads"},["content-length-range",0,10]]}`), false)
	require.NoError(t, err)
	assert.False(t, result.Invalid)

	result, err = signer.Sign([]byte(`{"conditions":[{"bucket":"uploads"},["content-length-range",0,11]]}`), false)
	require.NoError(t, err)
	assert.True(t, result.Invalid)

	verifier, err := cfg.BuildVerifier(logger)
	require.NoError(t, err)
	assert.NotNil(t, verifier)
}

func TestUsage(t *testing.T) {
	usage := Usage()
	assert.Contains(t, usage, "AWS_CLIENT_SECRET_KEY")
	assert.Contains(t, usage, "S3_BUCKET_NAME")
}
