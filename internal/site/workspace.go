package site

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Workspace is the pair of scratch directories one pipeline run builds in.
// It is constructed once per run and threaded through every stage.
type Workspace struct {
	Slug      string
	SourceDir string
	OutputDir string
}

// WorkspaceManager creates and resets per-slug scratch workspaces.
type WorkspaceManager struct {
	scratchRoot  string
	templateHome string
}

// NewWorkspaceManager creates a new WorkspaceManager.
func NewWorkspaceManager(scratchRoot, templateHome string) *WorkspaceManager {
	return &WorkspaceManager{scratchRoot: scratchRoot, templateHome: templateHome}
}

// Root returns the scratch root all workspaces live under.
func (m *WorkspaceManager) Root() string {
	return m.scratchRoot
}

// ForSlug returns the canonical workspace for a slug. Paths are stable across
// runs so reruns are idempotent.
func (m *WorkspaceManager) ForSlug(slug string) Workspace {
	return Workspace{
		Slug:      slug,
		SourceDir: filepath.Join(m.scratchRoot, slug+"-source"),
		OutputDir: filepath.Join(m.scratchRoot, slug+"-build"),
	}
}

// Stage wipes the source workspace and fills it with a fresh copy of the
// template skeleton. Builds are never incremental, so any previous state is
// destroyed first.
func (m *WorkspaceManager) Stage(ws Workspace) error {
	if err := os.RemoveAll(ws.SourceDir); err != nil {
		return fmt.Errorf("clear source workspace: %w", err)
	}
	if err := os.MkdirAll(ws.SourceDir, 0o755); err != nil {
		return fmt.Errorf("create source workspace: %w", err)
	}
	if err := copyTree(m.templateHome, ws.SourceDir); err != nil {
		return fmt.Errorf("copy template skeleton: %w", err)
	}
	log.Debug().Str("slug", ws.Slug).Str("source", ws.SourceDir).Msg("Staged source workspace")
	return nil
}

// FreshOutput guarantees an empty output workspace.
func (m *WorkspaceManager) FreshOutput(ws Workspace) error {
	if err := os.RemoveAll(ws.OutputDir); err != nil {
		return fmt.Errorf("clear output workspace: %w", err)
	}
	if err := os.MkdirAll(ws.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output workspace: %w", err)
	}
	return nil
}

// Discard removes both scratch directories. Safe to call on a workspace that
// was never staged.
func (m *WorkspaceManager) Discard(ws Workspace) error {
	if err := os.RemoveAll(ws.SourceDir); err != nil {
		return err
	}
	return os.RemoveAll(ws.OutputDir)
}

// copyTree recursively copies the contents of src into dst, which must exist.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		target := filepath.Join(dst, relPath)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
