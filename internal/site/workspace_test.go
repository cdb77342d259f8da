package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestForSlugPathsAreStable(t *testing.T) {
	m := NewWorkspaceManager("/tmp/scratch", "/opt/template")

	ws := m.ForSlug("john-doe")
	require.Equal(t, "john-doe", ws.Slug)
	require.Equal(t, filepath.Join("/tmp/scratch", "john-doe-source"), ws.SourceDir)
	require.Equal(t, filepath.Join("/tmp/scratch", "john-doe-build"), ws.OutputDir)
	require.Equal(t, ws, m.ForSlug("john-doe"))
}

func TestStageCopiesTemplateSkeleton(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, map[string]string{
		"themes/portfolio-theme/theme.toml": "name = \"portfolio-theme\"\n",
		"static/images/logo.svg":            "<svg/>",
	})

	m := NewWorkspaceManager(t.TempDir(), template)
	ws := m.ForSlug("john-doe")
	require.NoError(t, m.Stage(ws))

	got, err := os.ReadFile(filepath.Join(ws.SourceDir, "themes", "portfolio-theme", "theme.toml"))
	require.NoError(t, err)
	require.Equal(t, "name = \"portfolio-theme\"\n", string(got))

	_, err = os.Stat(filepath.Join(ws.SourceDir, "static", "images", "logo.svg"))
	require.NoError(t, err)
}

func TestStageWipesPreviousState(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, map[string]string{"config.txt": "fresh"})

	m := NewWorkspaceManager(t.TempDir(), template)
	ws := m.ForSlug("john-doe")

	stale := filepath.Join(ws.SourceDir, "content", "blog", "deleted-post-1.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	require.NoError(t, m.Stage(ws))

	_, err := os.Stat(stale)
	require.True(t, os.IsNotExist(err), "stale file must not survive staging")
	_, err = os.Stat(filepath.Join(ws.SourceDir, "config.txt"))
	require.NoError(t, err)
}

func TestFreshOutputEmptiesDir(t *testing.T) {
	m := NewWorkspaceManager(t.TempDir(), t.TempDir())
	ws := m.ForSlug("john-doe")

	leftover := filepath.Join(ws.OutputDir, "index.html")
	require.NoError(t, os.MkdirAll(ws.OutputDir, 0o755))
	require.NoError(t, os.WriteFile(leftover, []byte("old build"), 0o644))

	require.NoError(t, m.FreshOutput(ws))

	entries, err := os.ReadDir(ws.OutputDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDiscardRemovesBothDirs(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, map[string]string{"config.txt": "x"})

	m := NewWorkspaceManager(t.TempDir(), template)
	ws := m.ForSlug("john-doe")
	require.NoError(t, m.Stage(ws))
	require.NoError(t, m.FreshOutput(ws))

	require.NoError(t, m.Discard(ws))
	_, err := os.Stat(ws.SourceDir)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(ws.OutputDir)
	require.True(t, os.IsNotExist(err))

	// Discarding a never-staged workspace is a no-op.
	require.NoError(t, m.Discard(m.ForSlug("never-staged")))
}
