package models

import (
	"time"
)

// Post represents a board post, imported from the legacy export or authored interactively
type Post struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Author       string    `json:"author" db:"author"`
	Content      string    `json:"content" db:"content"`
	Date         string    `json:"date" db:"date"`
	ReadCount    int       `json:"read_count" db:"read_count"`
	CategoryID   int64     `json:"category_id" db:"category_id"`
	Category     string    `json:"category" db:"category"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Populated by read paths only
	Comments   []*Comment `json:"comments,omitempty" db:"-"`
	FirstImage string     `json:"first_image,omitempty" db:"-"`
}

// HasPassword reports whether deleting the post requires a password
func (p *Post) HasPassword() bool {
	return p.PasswordHash != ""
}

// PostListOpts filters a board listing
type PostListOpts struct {
	Category string
	Query    string
	Page     int
	PerPage  int
}

// PostsPerPage is the board page size
const PostsPerPage = 12

// PostPage is one page of a board listing
type PostPage struct {
	Posts   []*Post `json:"posts"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	Total   int     `json:"total"`
	Pages   int     `json:"pages"`
}

// CreatePostRequest is the body of an interactively authored post
type CreatePostRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Password string `json:"password,omitempty"`
}
