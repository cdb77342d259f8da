package models

import "time"

// BlogPost represents a single blog entry owned by a user.
type BlogPost struct {
	PostID      int64     `json:"postId"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"` // free-text body
	CreatedAt   time.Time `json:"createdAt"`
}
