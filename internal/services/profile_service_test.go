package services

import (
	"testing"

	"github.com/aboutme-website/aboutme-be/internal/models"
	"github.com/stretchr/testify/require"
)

func sampleProfile(userID string) models.UserProfile {
	return models.UserProfile{
		UserID:          userID,
		FirstName:       "john",
		LastName:        "doe",
		Email:           "john@example.com",
		Profession:      "software engineer",
		CurrentEmployer: "acme corp",
		Description:     "I build things.",
	}
}

func TestUpsertAndGetProfile(t *testing.T) {
	svc := NewProfileService(testDB(t))

	require.NoError(t, svc.UpsertProfile(sampleProfile("u1")))

	got, err := svc.GetProfile("u1")
	require.NoError(t, err)
	require.Equal(t, "john", got.FirstName)
	require.Equal(t, "doe", got.LastName)
	require.Equal(t, "acme corp", got.CurrentEmployer)
	require.False(t, got.CreatedAt.IsZero())
}

func TestUpsertProfileUpdatesInPlace(t *testing.T) {
	svc := NewProfileService(testDB(t))
	require.NoError(t, svc.UpsertProfile(sampleProfile("u1")))

	firstSaved, err := svc.GetProfile("u1")
	require.NoError(t, err)

	updated := sampleProfile("u1")
	updated.Profession = "staff engineer"
	require.NoError(t, svc.UpsertProfile(updated))

	got, err := svc.GetProfile("u1")
	require.NoError(t, err)
	require.Equal(t, "staff engineer", got.Profession)
	// The original creation time survives updates.
	require.Equal(t, firstSaved.CreatedAt, got.CreatedAt)
}

func TestGetProfileNotFound(t *testing.T) {
	svc := NewProfileService(testDB(t))
	_, err := svc.GetProfile("missing")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestReplaceTopSkills(t *testing.T) {
	svc := NewProfileService(testDB(t))
	require.NoError(t, svc.UpsertProfile(sampleProfile("u1")))

	require.NoError(t, svc.ReplaceTopSkills("u1", []string{"Go", "SQL", "Docker", "Kubernetes"}))
	skills, err := svc.GetTopSkills("u1")
	require.NoError(t, err)
	require.Equal(t, []string{"Go", "SQL", "Docker"}, skills)

	require.NoError(t, svc.ReplaceTopSkills("u1", []string{"Python"}))
	skills, err = svc.GetTopSkills("u1")
	require.NoError(t, err)
	require.Equal(t, []string{"Python"}, skills)

	require.NoError(t, svc.ReplaceTopSkills("u1", nil))
	skills, err = svc.GetTopSkills("u1")
	require.NoError(t, err)
	require.Empty(t, skills)
}

func TestSaveDirectorySlug(t *testing.T) {
	svc := NewProfileService(testDB(t))

	require.NoError(t, svc.SaveDirectorySlug("u1", "john-doe"))

	slug, err := svc.GetDirectorySlug("u1")
	require.NoError(t, err)
	require.Equal(t, "john-doe", slug)

	// Same slug for a different user loses at insert time.
	require.ErrorIs(t, svc.SaveDirectorySlug("u2", "john-doe"), ErrSlugTaken)

	// A user never gets a second slug.
	require.Error(t, svc.SaveDirectorySlug("u1", "john-doe-1"))
}

func TestGetDirectorySlugUnallocated(t *testing.T) {
	svc := NewProfileService(testDB(t))
	slug, err := svc.GetDirectorySlug("u1")
	require.NoError(t, err)
	require.Empty(t, slug)
}

func TestLoadFullProfile(t *testing.T) {
	svc := NewProfileService(testDB(t))
	require.NoError(t, svc.UpsertProfile(sampleProfile("u1")))
	require.NoError(t, svc.ReplaceTopSkills("u1", []string{"Go"}))
	require.NoError(t, svc.SaveDirectorySlug("u1", "john-doe"))

	got, err := svc.LoadFullProfile("u1")
	require.NoError(t, err)
	require.Equal(t, []string{"Go"}, got.TopSkills)
	require.Equal(t, "john-doe", got.DirectorySlug)
}
