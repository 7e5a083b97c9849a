package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bulletin-board-api/internal/database"
	"github.com/bulletin-board-api/internal/models"
)

const postColumns = `p.id, p.title, p.author, p.content, p.date, p.read_count,
	p.category_id, c.name, p.password_hash, p.created_at`

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

// Create inserts a new post and sets its ID
func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	return insertPost(ctx, r.db, post)
}

// GetByID retrieves a post by ID
func (r *postRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`
	return scanPost(r.db.QueryRowContext(ctx, query, id))
}

// List returns one page of a board, newest first, and the total match count
func (r *postRepo) List(ctx context.Context, opts models.PostListOpts) ([]*models.Post, int, error) {
	var where []string
	var args []interface{}

	if opts.Category != "" {
		args = append(args, opts.Category)
		where = append(where, fmt.Sprintf("c.name = $%d", len(args)))
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.author ILIKE $%d)", len(args), len(args)))
	}

	from := ` FROM posts p JOIN categories c ON c.id = p.category_id`
	if len(where) > 0 {
		from += " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = models.PostsPerPage
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := "SELECT " + postColumns + from +
		fmt.Sprintf(" ORDER BY p.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	return posts, total, rows.Err()
}

// UpdateContent replaces the body of a post
func (r *postRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE posts SET content = $1 WHERE id = $2`, content, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post; its comments are removed by the foreign key cascade
func (r *postRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of posts
func (r *postRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}

// StreamAll streams posts in insertion order, optionally limited to one board
func (r *postRepo) StreamAll(ctx context.Context, category string, callback func(*models.Post) error) error {
	query := `SELECT ` + postColumns + `
		FROM posts p JOIN categories c ON c.id = p.category_id
		WHERE ($1::text = '' OR c.name = $1)
		ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return err
		}
		if err := callback(post); err != nil {
			return err
		}
	}

	return rows.Err()
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertPost(ctx context.Context, q execQuerier, post *models.Post) error {
	query := `
		INSERT INTO posts (title, author, content, date, read_count, category_id, category, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return q.QueryRowContext(ctx, query,
		post.Title, post.Author, post.Content, post.Date, post.ReadCount,
		post.CategoryID, post.Category, nullString(post.PasswordHash),
	).Scan(&post.ID, &post.CreatedAt)
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var passwordHash sql.NullString

	err := row.Scan(
		&post.ID, &post.Title, &post.Author, &post.Content, &post.Date, &post.ReadCount,
		&post.CategoryID, &post.Category, &passwordHash, &post.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	post.PasswordHash = passwordHash.String
	return &post, nil
}
