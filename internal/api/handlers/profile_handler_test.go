package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aboutme-website/aboutme-be/internal/auth"
	"github.com/aboutme-website/aboutme-be/internal/models"
	"github.com/aboutme-website/aboutme-be/internal/services"
	"github.com/aboutme-website/aboutme-be/internal/site"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type memProfileStore struct {
	mu       sync.Mutex
	profiles map[string]models.UserProfile
	skills   map[string][]string
	slugs    map[string]string // slug -> userID
	byUser   map[string]string
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{
		profiles: make(map[string]models.UserProfile),
		skills:   make(map[string][]string),
		slugs:    make(map[string]string),
		byUser:   make(map[string]string),
	}
}

func (m *memProfileStore) GetProfile(userID string) (models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return models.UserProfile{}, services.ErrProfileNotFound
	}
	return p, nil
}

func (m *memProfileStore) LoadFullProfile(userID string) (models.UserProfile, error) {
	p, err := m.GetProfile(userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.TopSkills = m.skills[userID]
	p.DirectorySlug = m.byUser[userID]
	return p, nil
}

func (m *memProfileStore) UpsertProfile(profile models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *memProfileStore) GetTopSkills(userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skills[userID], nil
}

func (m *memProfileStore) ReplaceTopSkills(userID string, skills []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(skills) > services.MaxTopSkills {
		skills = skills[:services.MaxTopSkills]
	}
	m.skills[userID] = skills
	return nil
}

func (m *memProfileStore) GetDirectorySlug(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byUser[userID], nil
}

func (m *memProfileStore) SaveDirectorySlug(userID, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.slugs[slug]; taken {
		return services.ErrSlugTaken
	}
	m.slugs[slug] = userID
	m.byUser[userID] = slug
	return nil
}

type memPostStore struct {
	posts map[string][]models.BlogPost
}

func (m *memPostStore) CreatePost(userID, title, description string) (models.BlogPost, error) {
	post := models.BlogPost{PostID: int64(len(m.posts[userID]) + 1), UserID: userID, Title: title, Description: description}
	m.posts[userID] = append([]models.BlogPost{post}, m.posts[userID]...)
	return post, nil
}

func (m *memPostStore) GetRecentPosts(userID string, limit int) ([]models.BlogPost, error) {
	posts := m.posts[userID]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *memPostStore) GetMostRecentPost(userID string) (models.BlogPost, error) {
	posts := m.posts[userID]
	if len(posts) == 0 {
		return models.BlogPost{}, services.ErrPostNotFound
	}
	return posts[0], nil
}

// passthroughBuilder copies the assembled sources straight to the output
// workspace, standing in for the real generator.
type passthroughBuilder struct{}

func (passthroughBuilder) Build(_ context.Context, ws site.Workspace) error {
	return filepath.Walk(ws.SourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(ws.SourceDir, path)
		if err != nil || rel == "." {
			return err
		}
		target := filepath.Join(ws.OutputDir, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

type profileFixture struct {
	handler    *ProfileHandler
	profiles   *memProfileStore
	posts      *memPostStore
	authSvc    *fakeAuthService
	notifier   *fakeNotifier
	publicRoot string
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()

	template := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(template, "config.txt"), []byte("skeleton"), 0o644))

	publicRoot := t.TempDir()
	profiles := newMemProfileStore()
	posts := &memPostStore{posts: make(map[string][]models.BlogPost)}
	authSvc := newFakeAuthService()
	notifier := &fakeNotifier{}

	pipeline := site.NewPipeline(
		site.NewWorkspaceManager(t.TempDir(), template),
		site.NewAssembler("https://about-me.website"),
		passthroughBuilder{},
		site.NewPublisher(publicRoot, "https://about-me.website"),
		profiles,
		posts,
		nil,
		nil,
		1,
	)

	h := NewProfileHandler(profiles, posts, authSvc, site.NewAllocator(profiles), pipeline, notifier)
	return &profileFixture{handler: h, profiles: profiles, posts: posts, authSvc: authSvc, notifier: notifier, publicRoot: publicRoot}
}

func requestWithClaims(t *testing.T, userID, phone string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	claims := &auth.Claims{
		Phone:            phone,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
	return req.WithContext(context.WithValue(req.Context(), auth.UserClaimsKey, claims))
}

func validProfilePayload() ProfilePayload {
	return ProfilePayload{
		FirstName:       "John",
		LastName:        "Doe",
		Email:           "john@example.com",
		Profession:      "Software Engineer",
		CurrentEmployer: "Acme Corp",
		Description:     "I build things.",
		TopSkills:       []string{"Go", "SQL"},
	}
}

func TestCreateProfilePublishesSite(t *testing.T) {
	f := newProfileFixture(t)
	f.authSvc.verified["555-123-4567"] = "user-1"

	rec := httptest.NewRecorder()
	f.handler.CreateProfile(rec, requestWithClaims(t, "user-1", "555-123-4567", validProfilePayload()))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "john-doe", resp["directoryId"])
	require.Equal(t, "https://about-me.website/john-doe", resp["url"])

	// The live directory carries the generated artifacts.
	_, err := os.Stat(filepath.Join(f.publicRoot, "john-doe", "data", "aboutinfo.yml"))
	require.NoError(t, err)

	// Names are stored lower-cased with hyphens for spaces.
	saved, err := f.profiles.GetProfile("user-1")
	require.NoError(t, err)
	require.Equal(t, "john", saved.FirstName)

	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, "https://about-me.website/john-doe", f.notifier.sent[0].URL)
}

func TestCreateProfileRequiresVerifiedPhone(t *testing.T) {
	f := newProfileFixture(t)

	rec := httptest.NewRecorder()
	f.handler.CreateProfile(rec, requestWithClaims(t, "user-1", "555-123-4567", validProfilePayload()))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateProfileRejectsMissingFields(t *testing.T) {
	f := newProfileFixture(t)
	f.authSvc.verified["555-123-4567"] = "user-1"

	payload := validProfilePayload()
	payload.Email = ""

	rec := httptest.NewRecorder()
	f.handler.CreateProfile(rec, requestWithClaims(t, "user-1", "555-123-4567", payload))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProfileKeepsSlugAcrossUpdates(t *testing.T) {
	f := newProfileFixture(t)
	f.authSvc.verified["555-123-4567"] = "user-1"

	rec := httptest.NewRecorder()
	f.handler.CreateProfile(rec, requestWithClaims(t, "user-1", "555-123-4567", validProfilePayload()))
	require.Equal(t, http.StatusOK, rec.Code)

	// A rename does not change the already-published directory.
	payload := validProfilePayload()
	payload.FirstName = "Jonathan"
	rec = httptest.NewRecorder()
	f.handler.CreateProfile(rec, requestWithClaims(t, "user-1", "555-123-4567", payload))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "john-doe", resp["directoryId"])
}

func TestGetDirectory(t *testing.T) {
	f := newProfileFixture(t)
	require.NoError(t, f.profiles.SaveDirectorySlug("user-1", "john-doe"))

	rec := httptest.NewRecorder()
	f.handler.GetDirectory(rec, requestWithClaims(t, "user-1", "555-123-4567", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "john-doe", resp["directoryId"])
}

func TestGetDirectoryUnallocated(t *testing.T) {
	f := newProfileFixture(t)

	rec := httptest.NewRecorder()
	f.handler.GetDirectory(rec, requestWithClaims(t, "user-1", "555-123-4567", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "john", normalizeName(" John "))
	require.Equal(t, "anne-marie", normalizeName("Anne Marie"))
	require.Equal(t, "jean-luc", normalizeName("jean-luc"))
}
