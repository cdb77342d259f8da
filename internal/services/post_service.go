package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/aboutme-website/aboutme-be/internal/models"
)

// ErrPostNotFound is returned when a user has no blog posts.
var ErrPostNotFound = errors.New("blog post not found")

// PostServiceProvider defines the interface for blog post services.
type PostServiceProvider interface {
	CreatePost(userID, title, description string) (models.BlogPost, error)
	GetRecentPosts(userID string, limit int) ([]models.BlogPost, error)
	GetMostRecentPost(userID string) (models.BlogPost, error)
}

// PostService provides business logic for blog post management.
type PostService struct {
	db *sql.DB
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB) *PostService {
	return &PostService{db: db}
}

func scanPost(row interface{ Scan(...any) error }) (models.BlogPost, error) {
	var post models.BlogPost
	var createdUnix int64
	if err := row.Scan(&post.PostID, &post.UserID, &post.Title, &post.Description, &createdUnix); err != nil {
		return models.BlogPost{}, err
	}
	post.CreatedAt = time.Unix(createdUnix, 0)
	return post, nil
}

// CreatePost stores a new blog post and returns it with its assigned id.
func (s *PostService) CreatePost(userID, title, description string) (models.BlogPost, error) {
	res, err := s.db.Exec("INSERT INTO blog_posts (user_id, title, description, created_at) VALUES (?, ?, ?, ?)",
		userID, title, description, time.Now().Unix())
	if err != nil {
		return models.BlogPost{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.BlogPost{}, err
	}

	row := s.db.QueryRow("SELECT post_id, user_id, title, description, created_at FROM blog_posts WHERE post_id = ?", id)
	return scanPost(row)
}

// GetRecentPosts retrieves the user's most recent posts, newest first.
func (s *PostService) GetRecentPosts(userID string, limit int) ([]models.BlogPost, error) {
	rows, err := s.db.Query(
		"SELECT post_id, user_id, title, description, created_at FROM blog_posts WHERE user_id = ? ORDER BY created_at DESC, post_id DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.BlogPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// GetMostRecentPost retrieves the user's newest post.
func (s *PostService) GetMostRecentPost(userID string) (models.BlogPost, error) {
	row := s.db.QueryRow(
		"SELECT post_id, user_id, title, description, created_at FROM blog_posts WHERE user_id = ? ORDER BY created_at DESC, post_id DESC LIMIT 1",
		userID,
	)
	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.BlogPost{}, ErrPostNotFound
		}
		return models.BlogPost{}, err
	}
	return post, nil
}
