package site

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// SiteBuilder compiles a staged source workspace into static output.
type SiteBuilder interface {
	Build(ctx context.Context, ws Workspace) error
}

// HugoBuilder invokes the external hugo binary with explicit source and
// destination arguments. Arguments are always passed as an argv list, never a
// shell string, so paths with spaces are safe.
type HugoBuilder struct {
	// HugoPath is the resolved path of the hugo binary.
	HugoPath string
	// Timeout bounds a single build; exceeding it fails the run.
	Timeout time.Duration
}

// NewHugoBuilder resolves the hugo binary on PATH.
func NewHugoBuilder(timeout time.Duration) (*HugoBuilder, error) {
	path, err := exec.LookPath("hugo")
	if err != nil {
		return nil, fmt.Errorf("hugo binary not found on PATH: %w", err)
	}
	return &HugoBuilder{HugoPath: path, Timeout: timeout}, nil
}

// Build runs hugo against the workspace. A non-zero exit returns a
// BuildFailedError carrying the combined output; exceeding the timeout
// returns ErrBuildTimeout. Neither is retried.
func (b *HugoBuilder) Build(ctx context.Context, ws Workspace) error {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.HugoPath, "-s", ws.SourceDir, "-d", ws.OutputDir)
	start := time.Now()
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Error().Str("slug", ws.Slug).Dur("elapsed", time.Since(start)).Msg("Hugo build timed out")
			return ErrBuildTimeout
		}
		return &BuildFailedError{Output: string(output), Err: err}
	}

	log.Info().Str("slug", ws.Slug).Dur("elapsed", time.Since(start)).Msg("Hugo build completed")
	log.Debug().Str("slug", ws.Slug).Str("output", string(output)).Msg("Hugo build output")
	return nil
}
