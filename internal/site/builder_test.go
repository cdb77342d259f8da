package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeHugo writes an executable shell script standing in for the hugo binary.
func fakeHugo(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hugo")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestBuildInvokesGeneratorWithWorkspacePaths(t *testing.T) {
	ws := NewWorkspaceManager(t.TempDir(), t.TempDir()).ForSlug("john-doe")
	require.NoError(t, os.MkdirAll(ws.SourceDir, 0o755))

	// Args arrive as: -s <source> -d <dest>. The script renders into dest the
	// way hugo would.
	b := &HugoBuilder{
		HugoPath: fakeHugo(t, `mkdir -p "$4" && cp -r "$2"/. "$4"/`),
		Timeout:  10 * time.Second,
	}
	require.NoError(t, os.WriteFile(filepath.Join(ws.SourceDir, "index.html"), []byte("rendered"), 0o644))

	require.NoError(t, b.Build(context.Background(), ws))

	got, err := os.ReadFile(filepath.Join(ws.OutputDir, "index.html"))
	require.NoError(t, err)
	require.Equal(t, "rendered", string(got))
}

func TestBuildFailureCarriesGeneratorOutput(t *testing.T) {
	ws := NewWorkspaceManager(t.TempDir(), t.TempDir()).ForSlug("john-doe")

	b := &HugoBuilder{
		HugoPath: fakeHugo(t, `echo "Error: unable to locate config file"; exit 1`),
		Timeout:  10 * time.Second,
	}

	err := b.Build(context.Background(), ws)
	require.Error(t, err)

	var buildErr *BuildFailedError
	require.True(t, errors.As(err, &buildErr))
	require.Contains(t, buildErr.Output, "unable to locate config file")
}

func TestBuildTimesOut(t *testing.T) {
	ws := NewWorkspaceManager(t.TempDir(), t.TempDir()).ForSlug("john-doe")

	b := &HugoBuilder{
		HugoPath: fakeHugo(t, `exec sleep 30`),
		Timeout:  100 * time.Millisecond,
	}

	start := time.Now()
	err := b.Build(context.Background(), ws)
	require.ErrorIs(t, err, ErrBuildTimeout)
	require.Less(t, time.Since(start), 10*time.Second)
}

func TestNewHugoBuilderRequiresBinaryOnPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := NewHugoBuilder(time.Minute)
	require.Error(t, err)
}
