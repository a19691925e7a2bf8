// Package staging manages the per-job local working directory tree.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager creates job-scoped workspaces under Root. Paths always incorporate
// the job id so concurrent jobs never share a tree.
type Manager struct {
	Root string
}

func NewManager(root string) *Manager {
	if root == "" {
		root = filepath.Join(os.TempDir(), "transcode-staging")
	}
	return &Manager{Root: root}
}

// Workspace is the staging tree for a single job: a raw-input subtree and an
// output subtree with one directory per rendition.
type Workspace struct {
	Dir       string
	RawDir    string
	OutputDir string
}

// Acquire builds the workspace for jobID, wiping any stale tree left behind
// by a previous run of the same id.
func (m *Manager) Acquire(jobID string, renditions []string) (*Workspace, error) {
	if jobID == "" || filepath.Base(jobID) != jobID {
		return nil, fmt.Errorf("invalid job id %q", jobID)
	}
	dir := filepath.Join(m.Root, jobID)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("removing stale staging tree: %w", err)
	}
	ws := &Workspace{
		Dir:       dir,
		RawDir:    filepath.Join(dir, "raw"),
		OutputDir: filepath.Join(dir, "output"),
	}
	dirs := []string{ws.RawDir, ws.OutputDir}
	for _, name := range renditions {
		dirs = append(dirs, ws.RenditionDir(name))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			os.RemoveAll(dir)
			return nil, fmt.Errorf("creating staging dir %s: %w", d, err)
		}
	}
	return ws, nil
}

// RenditionDir is the output directory for one rendition's segments.
func (w *Workspace) RenditionDir(name string) string {
	return filepath.Join(w.OutputDir, name)
}

// Cleanup deletes the whole tree. Safe to call more than once.
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}
