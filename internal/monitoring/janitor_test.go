package monitoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewJanitorRejectsBadCronExpr(t *testing.T) {
	_, err := NewJanitor(t.TempDir(), "not a cron expr")
	require.Error(t, err)
}

func TestSweepRemovesOnlyStaleWorkspaces(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"john-doe-source", "john-doe-build", "jane-roe-source", "not-a-workspace"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray-file.txt"), []byte("x"), 0o644))

	j, err := NewJanitor(root, "0 3 * * *")
	require.NoError(t, err)

	// Workspaces were just created; a sweep dated far in the future sees them
	// all as stale, while a current sweep keeps everything.
	j.sweep(time.Now())
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// Age the two john-doe workspaces past the cutoff.
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "john-doe-source"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(root, "john-doe-build"), old, old))

	j.sweep(time.Now())

	_, err = os.Stat(filepath.Join(root, "john-doe-source"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "john-doe-build"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "jane-roe-source"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "not-a-workspace"))
	require.NoError(t, err)
}
