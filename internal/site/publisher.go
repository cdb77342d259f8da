package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Publisher swaps freshly built output into the live public directory. The
// swap is a pair of renames, so external readers always observe either the
// previous complete site or the new one, never an empty or half-copied
// directory.
type Publisher struct {
	publicRoot string
	baseURL    string
}

// NewPublisher creates a new Publisher.
func NewPublisher(publicRoot, baseURL string) *Publisher {
	return &Publisher{publicRoot: publicRoot, baseURL: strings.TrimRight(baseURL, "/")}
}

// Publish copies the build output into a staging sibling of the live
// directory, then renames it into place. On any failure the previous live
// content is left untouched. Returns the public URL of the site.
func (p *Publisher) Publish(ws Workspace) (string, error) {
	if err := os.MkdirAll(p.publicRoot, 0o755); err != nil {
		return "", fmt.Errorf("create public root: %w", err)
	}

	liveDir := filepath.Join(p.publicRoot, ws.Slug)
	stagingDir := fmt.Sprintf("%s.staging-%d", liveDir, time.Now().UnixNano())

	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	if err := copyTree(ws.OutputDir, stagingDir); err != nil {
		os.RemoveAll(stagingDir)
		return "", fmt.Errorf("copy build output to staging: %w", err)
	}

	oldDir := fmt.Sprintf("%s.old-%d", liveDir, time.Now().UnixNano())
	hadPrevious := false
	if _, err := os.Stat(liveDir); err == nil {
		if err := os.Rename(liveDir, oldDir); err != nil {
			os.RemoveAll(stagingDir)
			return "", fmt.Errorf("retire previous site: %w", err)
		}
		hadPrevious = true
	}

	if err := os.Rename(stagingDir, liveDir); err != nil {
		// Put the previous site back so the slug does not go dark.
		if hadPrevious {
			if restoreErr := os.Rename(oldDir, liveDir); restoreErr != nil {
				log.Error().Err(restoreErr).Str("slug", ws.Slug).Msg("Failed to restore previous site after aborted publish")
			}
		}
		os.RemoveAll(stagingDir)
		return "", fmt.Errorf("promote staging dir: %w", err)
	}

	if hadPrevious {
		if err := os.RemoveAll(oldDir); err != nil {
			log.Warn().Err(err).Str("slug", ws.Slug).Msg("Failed to remove retired site directory")
		}
	}

	log.Info().Str("slug", ws.Slug).Str("dir", liveDir).Msg("Published site")
	return p.SiteURL(ws.Slug), nil
}

// SiteURL returns the externally reachable URL of a slug's site.
func (p *Publisher) SiteURL(slug string) string {
	return p.baseURL + "/" + slug
}

// PostURL returns the externally reachable URL of a single blog post.
func (p *Publisher) PostURL(slug, title string, postID int64) string {
	return p.SiteURL(slug) + "/blog/" + PostSlug(title, postID)
}
