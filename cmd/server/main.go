package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/upload-signer/internal/logging"
	"github.com/tendant/upload-signer/pkg/uploadsigner/api"
	"github.com/tendant/upload-signer/pkg/uploadsigner/config"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		fmt.Fprintln(os.Stderr, config.Usage())
		os.Exit(1)
	}

	logger := logging.New(serverConfig.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	verifier, err := serverConfig.BuildVerifier(logger)
	if err != nil {
		slog.Error("Failed to build verifier", "err", err)
		os.Exit(1)
	}
	signer := serverConfig.BuildSigner(logger)

	handler := api.NewHandler(signer, verifier,
		api.WithMetrics(api.NewMetrics(prometheus.DefaultRegisterer)),
		api.WithDeleteBucket(serverConfig.ExpectedBucketName),
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           routes(handler, serverConfig),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_, hasMaxSize, _ := serverConfig.MaxSize()
		slog.Info("Upload signer starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"bucket", serverConfig.ExpectedBucketName,
			"region", serverConfig.BucketRegion,
			"api_version", serverConfig.BucketVersion,
			"storage_backend", serverConfig.StorageBackend,
			"size_enforced", hasMaxSize,
		)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

func routes(handler *api.Handler, serverConfig *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(api.CORSMiddleware(serverConfig.Origins()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/s3/handler", handler.Routes())

	return r
}
