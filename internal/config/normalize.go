package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizeTranscribe()
	if err := c.normalizeJobs(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeStorage() {
	if c.Storage.Bucket == "" {
		if value, ok := os.LookupEnv("GAVEL_BUCKET"); ok {
			c.Storage.Bucket = value
		}
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Prefix = strings.Trim(strings.TrimSpace(c.Storage.Prefix), "/")
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = defaultStorageRegion
	}
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
}

func (c *Config) normalizeTranscribe() {
	if strings.TrimSpace(c.Transcribe.Model) == "" {
		c.Transcribe.Model = defaultModel
	}
	if strings.TrimSpace(c.Transcribe.Language) == "" {
		c.Transcribe.Language = defaultLanguage
	}
	if c.Transcribe.ChunkMinutes <= 0 {
		c.Transcribe.ChunkMinutes = defaultChunkMinutes
	}
	if c.Transcribe.MinChunkSeconds <= 0 {
		c.Transcribe.MinChunkSeconds = defaultMinChunkSeconds
	}
	if c.Transcribe.Workers <= 0 {
		c.Transcribe.Workers = defaultWorkers
	}
	c.Transcribe.Extraction = strings.ToLower(strings.TrimSpace(c.Transcribe.Extraction))
	if c.Transcribe.Extraction == "" {
		c.Transcribe.Extraction = defaultExtraction
	}
}

func (c *Config) normalizeJobs() error {
	c.Jobs.Store = strings.ToLower(strings.TrimSpace(c.Jobs.Store))
	if c.Jobs.Store == "" {
		c.Jobs.Store = defaultJobStore
	}
	if c.Jobs.DBPath == "" {
		c.Jobs.DBPath = filepath.Join(c.Paths.LogDir, "jobs.db")
	}
	expanded, err := expandPath(c.Jobs.DBPath)
	if err != nil {
		return fmt.Errorf("jobs.db_path: %w", err)
	}
	c.Jobs.DBPath = expanded
	if c.Jobs.MaxActive <= 0 {
		c.Jobs.MaxActive = defaultMaxActiveJobs
	}
	if c.Jobs.QueueDepth <= 0 {
		c.Jobs.QueueDepth = defaultJobQueueDepth
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
