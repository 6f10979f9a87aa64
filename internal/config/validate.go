package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateTranscribe(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	if err := c.validateWorkspace(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "s3":
		if c.Storage.Bucket == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/gavel/config.toml"
			}
			return fmt.Errorf("storage.bucket is required. Set GAVEL_BUCKET env var or edit %s", defaultPath)
		}
	case "memory":
	default:
		return fmt.Errorf("storage.backend must be \"s3\" or \"memory\", got %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateTranscribe() error {
	if c.Transcribe.ChunkMinutes <= 0 {
		return errors.New("transcribe.chunk_minutes must be positive")
	}
	if c.Transcribe.MinChunkSeconds < 0 {
		return errors.New("transcribe.min_chunk_seconds must not be negative")
	}
	if c.Transcribe.MinChunkSeconds >= c.ChunkSeconds() {
		return errors.New("transcribe.min_chunk_seconds must be shorter than the chunk length")
	}
	if c.Transcribe.Workers < 1 {
		return errors.New("transcribe.workers must be at least 1")
	}
	switch c.Transcribe.Extraction {
	case "reencode", "copy":
	default:
		return fmt.Errorf("transcribe.extraction must be \"reencode\" or \"copy\", got %q", c.Transcribe.Extraction)
	}
	return nil
}

func (c *Config) validateJobs() error {
	switch c.Jobs.Store {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("jobs.store must be \"memory\" or \"sqlite\", got %q", c.Jobs.Store)
	}
	return nil
}

func (c *Config) validateWorkspace() error {
	if c.Workspace.StaleAfterHours < 1 {
		return errors.New("workspace.stale_after_hours must be at least 1")
	}
	return nil
}
