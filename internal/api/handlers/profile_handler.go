package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aboutme-website/aboutme-be/internal/auth"
	"github.com/aboutme-website/aboutme-be/internal/models"
	"github.com/aboutme-website/aboutme-be/internal/notify"
	"github.com/aboutme-website/aboutme-be/internal/services"
	"github.com/aboutme-website/aboutme-be/internal/site"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles HTTP requests for profile creation and publishing.
type ProfileHandler struct {
	profileService services.ProfileServiceProvider
	postService    services.PostServiceProvider
	authService    services.AuthServiceProvider
	allocator      *site.Allocator
	pipeline       *site.Pipeline
	notifier       notify.Notifier
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(
	profileService services.ProfileServiceProvider,
	postService services.PostServiceProvider,
	authService services.AuthServiceProvider,
	allocator *site.Allocator,
	pipeline *site.Pipeline,
	notifier notify.Notifier,
) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		postService:    postService,
		authService:    authService,
		allocator:      allocator,
		pipeline:       pipeline,
		notifier:       notifier,
	}
}

// ProfilePayload defines the structure for profile creation requests.
type ProfilePayload struct {
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Email           string   `json:"email"`
	Profession      string   `json:"profession"`
	CurrentEmployer string   `json:"currentEmployer"`
	Description     string   `json:"description"`
	TopSkills       []string `json:"topSkills"`
	ProfilePic      string   `json:"profilePic"`
}

// CreateProfile saves the caller's profile, allocates their public directory
// slug when absent, and rebuilds and publishes their site.
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload ProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Only verified phone numbers may publish.
	verified, err := h.authService.IsPhoneVerified(claims.Phone)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check phone verification state")
		http.Error(w, "Failed to create profile", http.StatusInternalServerError)
		return
	}
	if !verified {
		http.Error(w, "This phone number needs to be verified before creating the account", http.StatusForbidden)
		return
	}

	for field, value := range map[string]string{
		"firstName":       payload.FirstName,
		"lastName":        payload.LastName,
		"email":           payload.Email,
		"profession":      payload.Profession,
		"currentEmployer": payload.CurrentEmployer,
	} {
		if strings.TrimSpace(value) == "" {
			http.Error(w, field+" cannot be empty", http.StatusBadRequest)
			return
		}
	}

	userID := claims.Subject
	profile := models.UserProfile{
		UserID:          userID,
		FirstName:       normalizeName(payload.FirstName),
		LastName:        normalizeName(payload.LastName),
		Email:           strings.TrimSpace(payload.Email),
		Profession:      strings.TrimSpace(payload.Profession),
		CurrentEmployer: strings.TrimSpace(payload.CurrentEmployer),
		Description:     payload.Description,
		ProfilePic:      strings.TrimSpace(payload.ProfilePic),
	}

	if err := h.profileService.UpsertProfile(profile); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to save profile")
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}
	if err := h.profileService.ReplaceTopSkills(userID, payload.TopSkills); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to save top skills")
		http.Error(w, "Failed to save top skills", http.StatusInternalServerError)
		return
	}

	slug, err := h.allocator.Allocate(userID, profile.FirstName, profile.LastName)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to allocate directory slug")
		http.Error(w, "Failed to allocate site directory", http.StatusInternalServerError)
		return
	}

	// A user with existing posts gets the full rebuild including their blog.
	posts, err := h.postService.GetRecentPosts(userID, site.MaxPostsPerSite)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load posts")
		http.Error(w, "Failed to create profile", http.StatusInternalServerError)
		return
	}

	var url string
	if len(posts) > 0 {
		url, err = h.pipeline.PublishBlog(r.Context(), userID)
	} else {
		url, err = h.pipeline.PublishProfile(r.Context(), userID)
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("stage", string(site.FailedStage(err))).Msg("Profile publish failed")
		http.Error(w, "Site build failed. Please try again.", http.StatusInternalServerError)
		return
	}

	if err := h.notifier.SendSiteReady(claims.Phone, "profile", url); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to send site ready SMS")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"directoryId": slug,
		"url":         url,
		"status":      "Published",
	})
}

// GetDirectory returns the caller's assigned directory slug.
func (h *ProfileHandler) GetDirectory(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	slug, err := h.profileService.GetDirectorySlug(claims.Subject)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.Subject).Msg("Failed to load directory slug")
		http.Error(w, "Failed to load directory", http.StatusInternalServerError)
		return
	}
	if slug == "" {
		http.Error(w, "No site directory has been allocated yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"directoryId": slug})
}

// normalizeName lower-cases a name and replaces interior spaces with hyphens,
// the storage form slugs and display names are derived from.
func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}
