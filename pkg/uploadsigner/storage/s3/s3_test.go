package s3_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/upload-signer/pkg/uploadsigner"
	s3backend "github.com/tendant/upload-signer/pkg/uploadsigner/storage/s3"
)

// fakeS3 answers the handful of S3 calls the backend makes and records them
type fakeS3 struct {
	mu       sync.Mutex
	requests []string
	objects  map[string]string
	failDel  bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch r.Method {
	case http.MethodHead:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		if f.failDel {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>InternalError</Code><Message>boom</Message></Error>`)
			return
		}
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func newTestBackend(t *testing.T, fake *fakeS3) *s3backend.Backend {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	backend, err := s3backend.New(s3backend.Config{
		Region:          "us-east-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "server-secret",
		Endpoint:        server.URL,
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return backend
}

func TestHeadObjectSize(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"/uploads/photo.png": "0123456789"}}
	backend := newTestBackend(t, fake)

	size, err := backend.HeadObjectSize(context.Background(), "uploads", "photo.png")
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	_, err = backend.HeadObjectSize(context.Background(), "uploads", "missing.png")
	assert.ErrorIs(t, err, uploadsigner.ErrObjectNotFound)
}

func TestDeleteObject(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		fake := &fakeS3{objects: map[string]string{"/uploads/photo.png": "x"}}
		backend := newTestBackend(t, fake)

		require.NoError(t, backend.DeleteObject(context.Background(), "uploads", "photo.png"))
		assert.Equal(t, 1, fake.count("DELETE /uploads/photo.png"))
	})

	t.Run("FailureIsNotRetried", func(t *testing.T) {
		fake := &fakeS3{objects: map[string]string{}, failDel: true}
		backend := newTestBackend(t, fake)

		err := backend.DeleteObject(context.Background(), "uploads", "photo.png")
		require.Error(t, err)
		assert.Equal(t, 1, fake.count("DELETE"))
	})
}

func TestPresignGet(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}}
	backend := newTestBackend(t, fake)

	link, err := backend.PresignGet(context.Background(), "uploads", "photos/cat.png", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photos/cat.png", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), "AKIDEXAMPLE/")

	// Presigning is local
	assert.Zero(t, fake.count(""))
}

func TestVerifierOverS3(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"/uploads/big.bin": strings.Repeat("x", 32)}}
	backend := newTestBackend(t, fake)

	verifier := uploadsigner.NewVerifier(backend, uploadsigner.WithMaxSize(16))
	_, err := verifier.Verify(context.Background(), uploadsigner.UploadNotification{Bucket: "uploads", Key: "big.bin"})

	assert.ErrorIs(t, err, uploadsigner.ErrFileTooBig)
	assert.Equal(t, 1, fake.count("HEAD /uploads/big.bin"))
	assert.Equal(t, 1, fake.count("DELETE /uploads/big.bin"))
}
