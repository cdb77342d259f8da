package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aboutme-website/aboutme-be/internal/auth"
	"github.com/aboutme-website/aboutme-be/internal/notify"
	"github.com/aboutme-website/aboutme-be/internal/services"
	"github.com/aboutme-website/aboutme-be/internal/site"
	"github.com/rs/zerolog/log"
)

// PostHandler handles HTTP requests for blog posts.
type PostHandler struct {
	postService    services.PostServiceProvider
	profileService services.ProfileServiceProvider
	pipeline       *site.Pipeline
	notifier       notify.Notifier
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(
	postService services.PostServiceProvider,
	profileService services.ProfileServiceProvider,
	pipeline *site.Pipeline,
	notifier notify.Notifier,
) *PostHandler {
	return &PostHandler{
		postService:    postService,
		profileService: profileService,
		pipeline:       pipeline,
		notifier:       notifier,
	}
}

// PostPayload defines the structure for blog post creation requests.
type PostPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateBlogPost saves a new post and rebuilds and publishes the author's
// entire site.
func (h *PostHandler) CreateBlogPost(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Title) == "" {
		http.Error(w, "A title is required to create a blog post", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Description) == "" {
		http.Error(w, "A description is required to create a blog post", http.StatusBadRequest)
		return
	}

	userID := claims.Subject
	if _, err := h.profileService.LoadFullProfile(userID); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			http.Error(w, "You must create a profile before publishing blog posts", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile")
		http.Error(w, "Failed to create blog post", http.StatusInternalServerError)
		return
	}

	post, err := h.postService.CreatePost(userID, strings.TrimSpace(payload.Title), payload.Description)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to save blog post")
		http.Error(w, "Error creating your blog post", http.StatusInternalServerError)
		return
	}

	if _, err := h.pipeline.PublishBlog(r.Context(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("stage", string(site.FailedStage(err))).Msg("Blog publish failed")
		http.Error(w, "Site build failed. Please try again.", http.StatusInternalServerError)
		return
	}

	slug, err := h.profileService.GetDirectorySlug(userID)
	if err != nil || slug == "" {
		log.Error().Err(err).Str("user_id", userID).Msg("Created blog post but could not resolve directory slug")
		http.Error(w, "Created blog post but could not fetch the url", http.StatusInternalServerError)
		return
	}

	postURL := h.pipeline.Publisher().PostURL(slug, post.Title, post.PostID)
	if err := h.notifier.SendSiteReady(claims.Phone, "blog post", postURL); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to send blog ready SMS")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"postId": post.PostID,
		"url":    postURL,
		"status": "Published",
	})
}
