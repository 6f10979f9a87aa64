package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Storage contains configuration for the transcript artifact store.
type Storage struct {
	// Backend selects the blob store implementation: "s3" or "memory".
	Backend  string `toml:"backend"`
	Bucket   string `toml:"bucket"`
	Prefix   string `toml:"prefix"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
	// PathStyle forces path-style addressing, required by most
	// S3-compatible stores (MinIO, GCS interop endpoints).
	PathStyle bool `toml:"path_style"`
}

// Transcribe contains configuration for chunking and the WhisperX capability.
type Transcribe struct {
	Model           string  `toml:"model"`
	CUDAEnabled     bool    `toml:"cuda_enabled"`
	Language        string  `toml:"language"`
	ChunkMinutes    float64 `toml:"chunk_minutes"`
	MinChunkSeconds float64 `toml:"min_chunk_seconds"`
	// Workers bounds parallel chunk transcription within one job.
	Workers int `toml:"workers"`
	// Extraction selects how chunk boundaries are cut: "reencode" decodes
	// to 16 kHz mono PCM and is sample-accurate; "copy" stream-copies and
	// is fast but only accurate to the nearest packet boundary.
	Extraction string `toml:"extraction"`
	// Serialize forces one transcription call at a time, for capabilities
	// that are not reentrant.
	Serialize bool `toml:"serialize"`
}

// Jobs contains configuration for the job status store and admission.
type Jobs struct {
	// Store selects the backend: "memory" or "sqlite".
	Store  string `toml:"store"`
	DBPath string `toml:"db_path"`
	// MaxActive bounds how many jobs process concurrently.
	MaxActive int `toml:"max_active"`
	// QueueDepth bounds jobs waiting to start; submissions beyond it are
	// rejected.
	QueueDepth int `toml:"queue_depth"`
}

// Workspace contains configuration for scoped job work directories.
type Workspace struct {
	StaleAfterHours int `toml:"stale_after_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gavel.
//
// Configuration sections by subsystem:
//   - Paths: staging/log directories and API bind address
//   - Storage: object store holding metadata.json/transcript.json artifacts
//   - Transcribe: chunk planning and WhisperX invocation settings
//   - Jobs: job status store backend
//   - Workspace: stale work directory sweeping
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Storage    Storage    `toml:"storage"`
	Transcribe Transcribe `toml:"transcribe"`
	Jobs       Jobs       `toml:"jobs"`
	Workspace  Workspace  `toml:"workspace"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gavel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the staging and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ChunkSeconds returns the configured chunk window length in seconds.
func (c *Config) ChunkSeconds() float64 {
	return c.Transcribe.ChunkMinutes * 60
}

// FFmpegBinary returns the ffmpeg executable name used for chunk extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// YTDLPBinary returns the yt-dlp executable name used for audio acquisition.
func (c *Config) YTDLPBinary() string {
	return "yt-dlp"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
