package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"gavel/internal/acquire"
	"gavel/internal/blobstore"
	"gavel/internal/catalog"
	"gavel/internal/config"
	"gavel/internal/daemon"
	"gavel/internal/jobs"
	"gavel/internal/logging"
	"gavel/internal/pipeline"
	"gavel/internal/transcribe"
	"gavel/internal/workspace"
)

func loggingOptions(cfg *config.Config) logging.Options {
	format := cfg.Logging.Format
	if format == "" {
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			format = "console"
		} else {
			format = "json"
		}
	}
	return logging.Options{
		Level:  cfg.Logging.Level,
		Format: format,
		Path:   filepath.Join(cfg.Paths.LogDir, "gaveld.log"),
	}
}

func openBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			PathStyle: cfg.Storage.PathStyle,
		})
	default:
		return nil, fmt.Errorf("storage backend: unsupported value %q", cfg.Storage.Backend)
	}
}

func openJobStore(cfg *config.Config) (jobs.Store, error) {
	switch cfg.Jobs.Store {
	case "memory":
		return jobs.NewMemoryStore(), nil
	case "sqlite":
		dbPath := cfg.Jobs.DBPath
		if dbPath == "" {
			dbPath = filepath.Join(cfg.Paths.LogDir, "jobs.db")
		}
		return jobs.OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("job store: unsupported value %q", cfg.Jobs.Store)
	}
}

func buildTranscriber(cfg *config.Config) transcribe.Transcriber {
	capability := transcribe.NewWhisperX(transcribe.WhisperXConfig{
		Model:       cfg.Transcribe.Model,
		CUDAEnabled: cfg.Transcribe.CUDAEnabled,
		Language:    cfg.Transcribe.Language,
	})
	if cfg.Transcribe.Serialize {
		return transcribe.Serialize(capability)
	}
	return capability
}

func bootstrapDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	cat := catalog.New(blobs, cfg.Storage.Prefix)

	store, err := openJobStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	workspaces, err := workspace.NewManager(cfg.Paths.StagingDir)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	fetcher := acquire.NewYTDLP(cfg.YTDLPBinary())
	orchestrator := pipeline.New(cfg, cat, store, fetcher, buildTranscriber(cfg), workspaces, logger)

	return daemon.New(cfg, store, cat, orchestrator, workspaces, logger)
}
