package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/upload-signer/internal/logging"
	"github.com/tendant/upload-signer/pkg/uploadsigner"
	s3storage "github.com/tendant/upload-signer/pkg/uploadsigner/storage/s3"
)

// s3check uploads a probe object of a chosen size and runs the post-upload
// verifier against it, exercising HEAD, DELETE and presign against a real
// S3-compatible endpoint.
func main() {
	_ = godotenv.Load()

	region := flag.String("region", getEnv("S3_BUCKET_REGION", "us-east-1"), "AWS region")
	bucket := flag.String("bucket", os.Getenv("S3_BUCKET_NAME"), "S3 bucket name")
	accessKey := flag.String("access-key", os.Getenv("AWS_SERVER_PUBLIC_KEY"), "storage access key ID")
	secretKey := flag.String("secret-key", os.Getenv("AWS_SERVER_PRIVATE_KEY"), "storage secret access key")
	endpoint := flag.String("endpoint", os.Getenv("S3_ENDPOINT"), "Custom S3 endpoint (for MinIO, etc.)")
	usePathStyle := flag.Bool("use-path-style", false, "Use path-style addressing")
	createBucket := flag.Bool("create-bucket", false, "Create bucket if it doesn't exist")

	key := flag.String("key", fmt.Sprintf("s3check/probe-%d.png", time.Now().Unix()), "Object key for the probe")
	probeSize := flag.Int64("probe-size", 1024, "Size in bytes of the probe object")
	maxSize := flag.Int64("max-size", 0, "Max size enforced by the verifier (0 disables the check)")
	previewCapable := flag.Bool("preview-capable", false, "Pretend the browser can render previews")

	flag.Parse()

	if *bucket == "" {
		log.Fatal("Bucket name is required")
	}

	backend, err := s3storage.New(s3storage.Config{
		Region:          *region,
		AccessKeyID:     *accessKey,
		SecretAccessKey: *secretKey,
		Endpoint:        *endpoint,
		UsePathStyle:    *usePathStyle,
	})
	if err != nil {
		log.Fatalf("Failed to initialize S3 backend: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *createBucket {
		if err := backend.CreateBucketIfNotExists(ctx, *bucket); err != nil {
			log.Fatalf("Failed to create bucket: %v", err)
		}
	}

	probe := bytes.Repeat([]byte{0}, int(*probeSize))
	if err := backend.Upload(ctx, *bucket, *key, bytes.NewReader(probe)); err != nil {
		log.Fatalf("Failed to upload probe: %v", err)
	}
	fmt.Printf("Uploaded probe %s/%s (%d bytes)\n", *bucket, *key, *probeSize)

	opts := []uploadsigner.VerifierOption{
		uploadsigner.WithVerifierLogger(logging.New("text", os.Stderr)),
	}
	if *maxSize > 0 {
		opts = append(opts, uploadsigner.WithMaxSize(*maxSize))
	}
	verifier := uploadsigner.NewVerifier(backend, opts...)

	result, err := verifier.Verify(ctx, uploadsigner.UploadNotification{
		Bucket:                  *bucket,
		Key:                     *key,
		Filename:                *key,
		IsBrowserPreviewCapable: *previewCapable,
	})
	switch {
	case errors.Is(err, uploadsigner.ErrFileTooBig):
		fmt.Println("Probe exceeded max size and was deleted")
		return
	case err != nil:
		log.Fatalf("Verification failed: %v", err)
	}

	fmt.Printf("Temp link: %s\n", result.TempLink)
	if result.ThumbnailURL != "" {
		fmt.Printf("Thumbnail: %s\n", result.ThumbnailURL)
	}

	if err := verifier.Delete(ctx, *bucket, *key); err != nil {
		log.Fatalf("Failed to clean up probe: %v", err)
	}
	fmt.Println("Probe deleted")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
