// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"gavel/internal/config"
)

// NewConfig returns a config rooted in a fresh temp directory with the
// in-memory storage and job store backends selected.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Storage.Backend = "memory"
	cfg.Jobs.Store = "memory"
	cfg.Jobs.DBPath = filepath.Join(cfg.Paths.LogDir, "jobs.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
