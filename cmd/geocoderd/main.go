// Command geocoderd serves the geocoding API over HTTP.
//
// Configuration comes from the environment (a .env file is honored):
//
//	GEOCODER_ADDR        listen address (default :8080)
//	GEOCODER_BACKEND     blob backend: local | s3 | minio (default local)
//	GEOCODER_DATA_DIR    dataset directory for the local backend
//	GEOCODER_BUCKET      bucket name for s3 and minio backends
//	GEOCODER_PREFIX      key prefix inside the bucket
//	GEOCODER_S3_REGION   AWS region for the s3 backend
//	GEOCODER_MINIO_ENDPOINT, GEOCODER_MINIO_ACCESS_KEY,
//	GEOCODER_MINIO_SECRET_KEY, GEOCODER_MINIO_SECURE
//	GEOCODER_CACHE_SIZE  blob cache entries (default 32)
//	GEOCODER_CACHE_TTL   blob cache TTL (default 5m)
//	GEOCODER_LOG_LEVEL   debug | info | warn | error (default info)
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gersmaps/geocoder"
	"github.com/gersmaps/geocoder/api"
	"github.com/gersmaps/geocoder/blobstore"
	minioblob "github.com/gersmaps/geocoder/blobstore/minio"
	s3blob "github.com/gersmaps/geocoder/blobstore/s3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("geocoderd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	level := parseLevel(envOr("GEOCODER_LOG_LEVEL", "info"))
	logger := geocoder.NewJSONLogger(level)
	slog.SetDefault(logger.Logger)

	store, err := buildStore(context.Background())
	if err != nil {
		return err
	}

	cacheSize := envInt("GEOCODER_CACHE_SIZE", 32)
	cacheTTL := envDuration("GEOCODER_CACHE_TTL", 5*time.Minute)
	cached := blobstore.NewCachingStore(store, cacheSize, cacheTTL)

	engine := geocoder.New(cached, geocoder.WithLogger(logger))
	defer engine.Close()

	srv := &http.Server{
		Addr:              envOr("GEOCODER_ADDR", ":8080"),
		Handler:           api.NewServer(engine, api.WithServerLogger(logger.Logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildStore(ctx context.Context) (blobstore.Store, error) {
	backend := envOr("GEOCODER_BACKEND", "local")

	switch backend {
	case "local":
		dir := os.Getenv("GEOCODER_DATA_DIR")
		if dir == "" {
			return nil, fmt.Errorf("GEOCODER_DATA_DIR required for local backend")
		}
		return blobstore.NewLocalStore(dir), nil

	case "s3":
		bucket := os.Getenv("GEOCODER_BUCKET")
		if bucket == "" {
			return nil, fmt.Errorf("GEOCODER_BUCKET required for s3 backend")
		}
		var loadOpts []func(*awsconfig.LoadOptions) error
		if region := os.Getenv("GEOCODER_S3_REGION"); region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3blob.NewStore(awss3.NewFromConfig(cfg), bucket, os.Getenv("GEOCODER_PREFIX")), nil

	case "minio":
		bucket := os.Getenv("GEOCODER_BUCKET")
		endpoint := os.Getenv("GEOCODER_MINIO_ENDPOINT")
		if bucket == "" || endpoint == "" {
			return nil, fmt.Errorf("GEOCODER_BUCKET and GEOCODER_MINIO_ENDPOINT required for minio backend")
		}
		client, err := minio.New(endpoint, &minio.Options{
			Creds: credentials.NewStaticV4(
				os.Getenv("GEOCODER_MINIO_ACCESS_KEY"),
				os.Getenv("GEOCODER_MINIO_SECRET_KEY"),
				"",
			),
			Secure: os.Getenv("GEOCODER_MINIO_SECURE") == "true",
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minioblob.NewStore(client, bucket, os.Getenv("GEOCODER_PREFIX")), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
