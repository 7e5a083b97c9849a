package models

// Comment represents a comment on a post. CreatedAt keeps the display
// string ("2006-01-02 15:04") the board has always rendered.
type Comment struct {
	ID        int64  `json:"id" db:"id"`
	PostID    int64  `json:"post_id" db:"post_id"`
	Author    string `json:"author" db:"author"`
	Content   string `json:"content" db:"content"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// CreateCommentRequest is the body of an interactively authored comment
type CreateCommentRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// DisplayDateLayout is the date format shown on the board
const DisplayDateLayout = "2006-01-02 15:04"
