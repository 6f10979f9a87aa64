package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed sample_config.toml
var sampleConfig string

// CreateSample writes the annotated sample configuration to path. An
// existing file is left untouched unless overwrite is set.
func CreateSample(path string, overwrite bool) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(expanded); err == nil {
			return fmt.Errorf("config file already exists at %s", expanded)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
