package main

import (
	"context"
	"flag"
	"io"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-service/config"
	"github.com/oksasatya/go-ddd-user-service/internal/container"
	"github.com/oksasatya/go-ddd-user-service/pkg/helpers"
)

// export uploads every user as JSON lines to GCS_BUCKET.
func main() {
	pageSize := flag.Int("page-size", 100, "users read per page")
	prefix := flag.String("prefix", "exports/", "object name prefix inside the bucket")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-export", cfg.Env)
	if cfg.GCSBucket == "" {
		logger.Fatal("GCS_BUCKET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	// Export reads storage only; events and indexing stay off.
	cfg.EventsEnabled = false
	cfg.SearchEnabled = false
	c, err := container.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize dependencies")
	}
	defer c.Close()

	gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to init GCS client")
	}
	defer func() { _ = gcs.Close() }()

	object := *prefix + "users-" + time.Now().UTC().Format("20060102T150405Z") + ".jsonl"

	pr, pw := io.Pipe()
	done := make(chan int, 1)
	go func() {
		n, err := c.UserService.ExportUsers(ctx, pw, *pageSize)
		_ = pw.CloseWithError(err)
		done <- n
	}()

	uri, err := helpers.UploadObject(ctx, gcs, cfg.GCSBucket, object, "application/x-ndjson", pr)
	_ = pr.Close()
	n := <-done
	if err != nil {
		logger.WithError(err).Fatal("export failed")
	}
	logger.WithFields(logrus.Fields{"object": uri, "users": n}).Info("export finished")
}
