package site

import (
	"context"
	"fmt"
	"sync"

	"github.com/aboutme-website/aboutme-be/internal/models"
	"github.com/aboutme-website/aboutme-be/internal/services"
	"github.com/aboutme-website/aboutme-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// MaxPostsPerSite caps how many recent posts appear on a generated site.
const MaxPostsPerSite = 10

// Pipeline sequences Stage -> Assemble -> Build -> Publish for one user's
// site. Runs for the same slug are mutually exclusive; runs for different
// slugs proceed in parallel up to the worker limit.
type Pipeline struct {
	workspaces *WorkspaceManager
	assembler  *Assembler
	builder    SiteBuilder
	publisher  *Publisher
	profiles   services.ProfileServiceProvider
	posts      services.PostServiceProvider
	events     services.EventServiceProvider
	hub        *websocket.Hub

	mu        sync.Mutex
	slugLocks map[string]*sync.Mutex
	sem       chan struct{}
}

// NewPipeline creates a new Pipeline. events and hub may be nil; stage
// reporting is then skipped.
func NewPipeline(
	workspaces *WorkspaceManager,
	assembler *Assembler,
	builder SiteBuilder,
	publisher *Publisher,
	profiles services.ProfileServiceProvider,
	posts services.PostServiceProvider,
	events services.EventServiceProvider,
	hub *websocket.Hub,
	workers int,
) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		workspaces: workspaces,
		assembler:  assembler,
		builder:    builder,
		publisher:  publisher,
		profiles:   profiles,
		posts:      posts,
		events:     events,
		hub:        hub,
		slugLocks:  make(map[string]*sync.Mutex),
		sem:        make(chan struct{}, workers),
	}
}

// PublishProfile rebuilds and publishes the user's site with profile and
// skills content only. Returns the public site URL.
func (p *Pipeline) PublishProfile(ctx context.Context, userID string) (string, error) {
	return p.run(ctx, userID, false)
}

// PublishBlog rebuilds and publishes the user's entire site including the
// most recent posts, newest first. Requires at least one post.
func (p *Pipeline) PublishBlog(ctx context.Context, userID string) (string, error) {
	return p.run(ctx, userID, true)
}

func (p *Pipeline) run(ctx context.Context, userID string, includePosts bool) (string, error) {
	profile, err := p.profiles.LoadFullProfile(userID)
	if err != nil {
		return "", err
	}
	if profile.DirectorySlug == "" {
		return "", ErrSlugNotAssigned
	}

	var posts []models.BlogPost
	if includePosts {
		posts, err = p.posts.GetRecentPosts(userID, MaxPostsPerSite)
		if err != nil {
			return "", fmt.Errorf("load recent posts: %w", err)
		}
		if len(posts) == 0 {
			return "", ErrNoPosts
		}
	}

	// Bound concurrent runs; the external build is the expensive part.
	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	slug := profile.DirectorySlug
	lock := p.lockFor(slug)
	lock.Lock()
	defer lock.Unlock()

	ws := p.workspaces.ForSlug(slug)

	url, err := p.runStages(ctx, ws, profile, posts)
	if err != nil {
		stage := FailedStage(err)
		log.Error().Err(err).Str("slug", slug).Str("stage", string(stage)).Msg("Pipeline run failed")
		p.emit(slug, "site.build.failed", "error", fmt.Sprintf("site build failed at stage %q", stage))
		return "", err
	}
	p.emit(slug, "site.published", "info", "site published at "+url)
	return url, nil
}

// runStages executes the four stages in order. Any failure aborts the
// remaining stages; Publish is never reached after an earlier failure, so the
// live site keeps its previous content. Workspace state is not rolled back —
// the next run wipes it during Stage.
func (p *Pipeline) runStages(ctx context.Context, ws Workspace, profile models.UserProfile, posts []models.BlogPost) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.emit(ws.Slug, "site.stage", "info", "staging build workspace")
	if err := p.workspaces.Stage(ws); err != nil {
		return "", &StageError{Stage: StageStage, Err: err}
	}
	if err := p.workspaces.FreshOutput(ws); err != nil {
		return "", &StageError{Stage: StageStage, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.emit(ws.Slug, "site.assemble", "info", "generating site content")
	if err := p.assembler.Assemble(ws, profile, posts); err != nil {
		return "", &StageError{Stage: StageAssemble, Err: err}
	}

	// Last cancellation point before the external process starts; from here
	// on cancellation is best-effort via the builder's context.
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.emit(ws.Slug, "site.build", "info", "running site generator")
	if err := p.builder.Build(ctx, ws); err != nil {
		return "", &StageError{Stage: StageBuild, Err: err}
	}

	p.emit(ws.Slug, "site.publish", "info", "publishing build output")
	url, err := p.publisher.Publish(ws)
	if err != nil {
		return "", &StageError{Stage: StagePublish, Err: err}
	}
	return url, nil
}

// Publisher exposes the URL builders for callers that need post links.
func (p *Pipeline) Publisher() *Publisher {
	return p.publisher
}

func (p *Pipeline) lockFor(slug string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.slugLocks[slug]
	if !ok {
		lock = &sync.Mutex{}
		p.slugLocks[slug] = lock
	}
	return lock
}

func (p *Pipeline) emit(slug, eventType, level, message string) {
	if p.events != nil {
		if err := p.events.CreateEvent(eventType, level, message, &slug); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Failed to record pipeline event")
		}
	}
	if p.hub != nil {
		p.hub.BroadcastTo(slug, websocket.NewBuildStatusMessage(slug, eventType, message))
	}
}
