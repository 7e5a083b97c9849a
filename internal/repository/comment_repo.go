package repository

import (
	"context"

	"github.com/bulletin-board-api/internal/database"
	"github.com/bulletin-board-api/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment and sets its ID
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return insertComment(ctx, r.db, comment)
}

// ListByPost returns the comments of a post, oldest first
func (r *commentRepo) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	query := `SELECT id, post_id, author, content, created_at FROM comments WHERE post_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.Author, &comment.Content, &comment.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

// StreamAll streams comments for export, optionally limited to one board
func (r *commentRepo) StreamAll(ctx context.Context, category string, callback func(*models.Comment) error) error {
	query := `
		SELECT cm.id, cm.post_id, cm.author, cm.content, cm.created_at
		FROM comments cm
		JOIN posts p ON p.id = cm.post_id
		JOIN categories c ON c.id = p.category_id
		WHERE ($1::text = '' OR c.name = $1)
		ORDER BY cm.id
	`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(&comment.ID, &comment.PostID, &comment.Author, &comment.Content, &comment.CreatedAt)
		if err != nil {
			return err
		}

		if err := callback(&comment); err != nil {
			return err
		}
	}

	return rows.Err()
}

func insertComment(ctx context.Context, q execQuerier, comment *models.Comment) error {
	query := `
		INSERT INTO comments (post_id, author, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return q.QueryRowContext(ctx, query,
		comment.PostID, comment.Author, comment.Content, comment.CreatedAt,
	).Scan(&comment.ID)
}
