package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manager creates scoped scratch directories under a single staging root.
type Manager struct {
	root string
}

func NewManager(root string) (*Manager, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("staging root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}
	return &Manager{root: root}, nil
}

// Root returns the staging root directory.
func (m *Manager) Root() string { return m.root }

// Create makes a fresh scratch directory for the given job.
func (m *Manager) Create(jobID string) (string, error) {
	dir := filepath.Join(m.root, "job-"+jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

// Remove deletes a scratch directory and everything under it. Paths
// outside the staging root are refused.
func (m *Manager) Remove(dir string) error {
	cleaned := filepath.Clean(dir)
	if cleaned == m.root || !strings.HasPrefix(cleaned, m.root+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s outside staging root", dir)
	}
	return os.RemoveAll(cleaned)
}
