package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/upload-signer/pkg/uploadsigner"
)

// maxSigningBodyBytes caps signing request bodies. Policies and strings to
// sign are a few kilobytes at most.
const maxSigningBodyBytes = 64 << 10

const fileTooBigMessage = "File is too big!"

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error        string `json:"error"`
	PreventRetry bool   `json:"preventRetry,omitempty"`
}

// Handler serves the upload signing endpoint used by browser uploaders
type Handler struct {
	signer         *uploadsigner.Signer
	verifier       *uploadsigner.Verifier
	expectedBucket string
	metrics        *Metrics
}

// HandlerOption is a functional option for configuring a Handler
type HandlerOption func(*Handler)

// WithMetrics records request outcomes in m
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithDeleteBucket restricts delete requests to bucket
func WithDeleteBucket(bucket string) HandlerOption {
	return func(h *Handler) {
		h.expectedBucket = bucket
	}
}

func NewHandler(signer *uploadsigner.Signer, verifier *uploadsigner.Verifier, opts ...HandlerOption) *Handler {
	h := &Handler{
		signer:   signer,
		verifier: verifier,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the router for the upload endpoint
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Endpoint)
	r.Delete("/{uuid}", h.DeleteFile)
	// Uploaders that cannot send DELETE post with _method=DELETE
	r.Post("/{uuid}", h.DeleteFile)
	return r
}

// Endpoint dispatches between upload success notifications and signing requests
func (h *Handler) Endpoint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.Error("Failed to parse request", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, r, http.StatusBadRequest, "invalid request")
		return
	}

	if r.Form.Has("success") {
		h.VerifyUpload(w, r)
		return
	}
	h.SignRequest(w, r)
}

// SignRequest signs a policy document or a REST string to sign
func (h *Handler) SignRequest(w http.ResponseWriter, r *http.Request) {
	requestID := RequestIDFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSigningBodyBytes))
	if err != nil {
		slog.Error("Failed to read signing request", "request_id", requestID, "error", err)
		h.metrics.observeSign("unknown", "unknown", "malformed")
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.signer.Sign(body, r.URL.Query().Has("v4"))
	if err != nil {
		if uploadsigner.IsClientError(err) {
			slog.Warn("Malformed signing request", "request_id", requestID, "error", err)
			h.metrics.observeSign("unknown", "unknown", "malformed")
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Failed to sign request", "request_id", requestID, "error", err)
		h.metrics.observeSign("unknown", "unknown", "error")
		writeError(w, r, http.StatusInternalServerError, "unable to sign request")
		return
	}

	outcome := "signed"
	if result.Invalid {
		outcome = "invalid"
	}
	h.metrics.observeSign(string(result.Mode), result.Version.String(), outcome)
	slog.Info("Signing request handled", "request_id", requestID,
		"mode", result.Mode, "version", result.Version.String(), "outcome", outcome)

	render.JSON(w, r, result)
}

// VerifyUpload handles the uploader's success notification
func (h *Handler) VerifyUpload(w http.ResponseWriter, r *http.Request) {
	requestID := RequestIDFromContext(r.Context())

	n := uploadsigner.UploadNotification{
		Bucket:                  r.Form.Get("bucket"),
		Key:                     r.Form.Get("key"),
		Filename:                r.Form.Get("name"),
		IsBrowserPreviewCapable: r.Form.Get("isBrowserPreviewCapable") == "true",
	}
	if n.Bucket == "" || n.Key == "" {
		h.metrics.observeVerification("malformed")
		writeError(w, r, http.StatusBadRequest, "bucket and key are required")
		return
	}

	result, err := h.verifier.Verify(r.Context(), n)
	if err != nil {
		if errors.Is(err, uploadsigner.ErrFileTooBig) {
			h.metrics.observeVerification("too_big")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: fileTooBigMessage, PreventRetry: true})
			return
		}
		slog.Error("Failed to verify upload", "request_id", requestID,
			"bucket", n.Bucket, "key", n.Key, "error", err)
		h.metrics.observeVerification("error")
		writeError(w, r, http.StatusInternalServerError, "unable to verify upload")
		return
	}

	h.metrics.observeVerification("ok")
	render.JSON(w, r, result)
}

// DeleteFile removes a previously uploaded file
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	requestID := RequestIDFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request")
		return
	}
	if r.Method == http.MethodPost && r.Form.Get("_method") != http.MethodDelete {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bucket := r.Form.Get("bucket")
	key := r.Form.Get("key")
	if bucket == "" || key == "" {
		h.metrics.observeDelete("malformed")
		writeError(w, r, http.StatusBadRequest, "bucket and key are required")
		return
	}
	if h.expectedBucket != "" && bucket != h.expectedBucket {
		slog.Warn("Rejected delete for unexpected bucket", "request_id", requestID, "bucket", bucket)
		h.metrics.observeDelete("invalid")
		writeError(w, r, http.StatusBadRequest, "unexpected bucket")
		return
	}

	if err := h.verifier.Delete(r.Context(), bucket, key); err != nil {
		slog.Error("Failed to delete file", "request_id", requestID,
			"uuid", chi.URLParam(r, "uuid"), "bucket", bucket, "key", key, "error", err)
		h.metrics.observeDelete("error")
		writeError(w, r, http.StatusInternalServerError, "unable to delete file")
		return
	}

	h.metrics.observeDelete("ok")
	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}
