package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aboutme-website/aboutme-be/internal/models"
)

// MaxTopSkills is the hard cap on skills rendered to a profile page.
const MaxTopSkills = 3

// ErrSlugTaken is returned when a directory slug is already owned by another user.
var ErrSlugTaken = errors.New("directory slug already taken")

// ErrProfileNotFound is returned when no profile row exists for a user.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileServiceProvider defines the interface for profile services.
type ProfileServiceProvider interface {
	GetProfile(userID string) (models.UserProfile, error)
	LoadFullProfile(userID string) (models.UserProfile, error)
	UpsertProfile(profile models.UserProfile) error
	GetTopSkills(userID string) ([]string, error)
	ReplaceTopSkills(userID string, skills []string) error
	GetDirectorySlug(userID string) (string, error)
	SaveDirectorySlug(userID, slug string) error
}

// ProfileService provides business logic for profile management.
type ProfileService struct {
	db *sql.DB
}

// NewProfileService creates a new ProfileService.
func NewProfileService(db *sql.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile retrieves the base profile row for a user.
func (s *ProfileService) GetProfile(userID string) (models.UserProfile, error) {
	var p models.UserProfile
	var profession, employer, description, profilePic sql.NullString
	row := s.db.QueryRow(
		"SELECT user_id, first_name, last_name, email, profession, current_employer, description, profile_pic, created_at FROM users WHERE user_id = ?",
		userID,
	)
	var createdUnix int64
	err := row.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Email, &profession, &employer, &description, &profilePic, &createdUnix)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.UserProfile{}, ErrProfileNotFound
		}
		return models.UserProfile{}, err
	}
	p.CreatedAt = time.Unix(createdUnix, 0)
	p.Profession = profession.String
	p.CurrentEmployer = employer.String
	p.Description = description.String
	p.ProfilePic = profilePic.String
	return p, nil
}

// LoadFullProfile retrieves the profile together with its top skills and
// directory slug. Missing skills are a valid state; a missing profile is not.
func (s *ProfileService) LoadFullProfile(userID string) (models.UserProfile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return models.UserProfile{}, err
	}

	skills, err := s.GetTopSkills(userID)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("load top skills: %w", err)
	}
	profile.TopSkills = skills

	slug, err := s.GetDirectorySlug(userID)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("load directory slug: %w", err)
	}
	profile.DirectorySlug = slug

	return profile, nil
}

// UpsertProfile creates the profile row on first save and updates it afterwards.
func (s *ProfileService) UpsertProfile(profile models.UserProfile) error {
	stmt, err := s.db.Prepare(`
		INSERT INTO users (user_id, first_name, last_name, email, profession, current_employer, description, profile_pic, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			profession = excluded.profession,
			current_employer = excluded.current_employer,
			description = excluded.description,
			profile_pic = excluded.profile_pic`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(profile.UserID, profile.FirstName, profile.LastName, profile.Email,
		profile.Profession, profile.CurrentEmployer, profile.Description, profile.ProfilePic,
		time.Now().Unix())
	return err
}

// GetTopSkills retrieves at most MaxTopSkills skills for a user, in stored order.
func (s *ProfileService) GetTopSkills(userID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT skill_name FROM user_top_skills WHERE user_id = ? ORDER BY position LIMIT ?",
		userID, MaxTopSkills,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		skills = append(skills, name)
	}
	return skills, rows.Err()
}

// ReplaceTopSkills removes the user's existing skills and stores the new set,
// capped at MaxTopSkills.
func (s *ProfileService) ReplaceTopSkills(userID string, skills []string) error {
	if len(skills) > MaxTopSkills {
		skills = skills[:MaxTopSkills]
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM user_top_skills WHERE user_id = ?", userID); err != nil {
		return err
	}
	for i, name := range skills {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := tx.Exec("INSERT INTO user_top_skills (user_id, position, skill_name) VALUES (?, ?, ?)", userID, i, name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetDirectorySlug returns the user's assigned slug, or "" when none is allocated.
func (s *ProfileService) GetDirectorySlug(userID string) (string, error) {
	var slug string
	row := s.db.QueryRow("SELECT directory_id FROM site_directories WHERE user_id = ?", userID)
	if err := row.Scan(&slug); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return slug, nil
}

// SaveDirectorySlug persists a slug for a user. Returns ErrSlugTaken when the
// slug is already owned, so allocation can retry with the next suffix.
func (s *ProfileService) SaveDirectorySlug(userID, slug string) error {
	_, err := s.db.Exec("INSERT INTO site_directories (directory_id, user_id, created_at) VALUES (?, ?, ?)", slug, userID, time.Now().Unix())
	if err != nil {
		if strings.Contains(err.Error(), "site_directories.directory_id") {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}
