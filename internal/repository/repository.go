package repository

import (
	"context"
	"errors"

	"github.com/bulletin-board-api/internal/database"
	"github.com/bulletin-board-api/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("duplicate category")
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	UpdateType(ctx context.Context, id int64, categoryType models.CategoryType) error
	Delete(ctx context.Context, id int64) (int, error)
	Count(ctx context.Context) (int, error)
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, opts models.PostListOpts) ([]*models.Post, int, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, category string, callback func(*models.Post) error) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, category string, callback func(*models.Comment) error) error
}

// JobRepository defines the interface for import job data operations
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error)
	GetPendingJobs(ctx context.Context) ([]*models.Job, error)
	MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error)
	AddErrors(ctx context.Context, jobID string, errors []models.JobError) error
	GetErrors(ctx context.Context, jobID string, limit int) ([]models.JobError, error)
}

// Session is one transaction against the store. The importer owns its
// lifetime: every write of a run goes through it and Commit is called once.
type Session interface {
	// InsertPost stores the post and sets its ID before the session commits
	InsertPost(ctx context.Context, post *models.Post) error
	// InsertComment stores the comment. A failed insert leaves the session
	// usable for the remaining writes.
	InsertComment(ctx context.Context, comment *models.Comment) error
	Commit() error
	Rollback() error
}

// SessionFactory begins store sessions
type SessionFactory interface {
	Begin(ctx context.Context) (Session, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Category CategoryRepository
	Post     PostRepository
	Comment  CommentRepository
	Job      JobRepository
	Sessions SessionFactory
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Category: NewCategoryRepo(db),
		Post:     NewPostRepo(db),
		Comment:  NewCommentRepo(db),
		Job:      NewJobRepo(db),
		Sessions: NewSessionFactory(db),
	}
}
