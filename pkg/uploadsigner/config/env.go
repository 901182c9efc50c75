package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv reads the process environment into the configuration.
//
// Environment variables:
//
//	AWS_CLIENT_SECRET_KEY   secret used to sign policies and REST requests (required)
//	AWS_SERVER_PUBLIC_KEY   storage credentials for HEAD/DELETE/presign
//	AWS_SERVER_PRIVATE_KEY
//	S3_BUCKET_NAME          bucket uploads must target (required)
//	S3_HOST_NAME            host v4 REST requests must target
//	S3_MAX_FILE_SIZE        max object size in bytes; unset disables the check
//	S3_BUCKET_REGION        default "us-east-1"
//	S3_BUCKET_VERSION       default "2006-03-01"
//	S3_ENDPOINT             custom endpoint for S3-compatible services
//	S3_USE_PATH_STYLE       default false
//	STORAGE_BACKEND         "s3" (default) or "memory"
//	TEMP_LINK_TTL           default "15m"
//	STORAGE_TIMEOUT         default "10s"
//	PORT, ENVIRONMENT, LOG_FORMAT, CORS_ALLOWED_ORIGINS
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// Usage describes the environment variables understood by WithEnv
func Usage() string {
	var cfg ServerConfig
	desc, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return desc
}
