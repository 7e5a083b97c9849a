package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/bulletin-board-api/internal/config"
	"github.com/bulletin-board-api/internal/legacy"
	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/repository"
	"github.com/rs/zerolog"
)

var (
	// ErrCategoryNotFound is returned when a board name is not in the store
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidPassword is returned when a protected post is deleted with the wrong password
	ErrInvalidPassword = errors.New("invalid password")
	// ErrPostNotFound is returned when a post does not exist
	ErrPostNotFound = errors.New("post not found")
)

// ImportService defines the interface for legacy import operations
type ImportService interface {
	CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error)
	ProcessImport(ctx context.Context, job *models.Job) error
	ImportFile(ctx context.Context, path, category string) (*models.Job, error)
	ImportDir(ctx context.Context, dir, prefix, category string) ([]*models.Job, error)
	RepairImagePaths(ctx context.Context) (int, error)
}

// ExportService defines the interface for board backups
type ExportService interface {
	StreamPosts(ctx context.Context, w http.ResponseWriter, format, category string) error
	StreamComments(ctx context.Context, w http.ResponseWriter, format, category string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// JobService defines the interface for job management
type JobService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	GetJob(ctx context.Context, id string) (*models.JobResponse, error)
	GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error)
	GetJobErrors(ctx context.Context, id string) ([]models.JobError, error)
	SetImportService(importService ImportService)
}

// BoardService defines the categories, posts and comments operations
type BoardService interface {
	SeedDefaultCategories(ctx context.Context) (int, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	UpdateCategoryType(ctx context.Context, id int64, categoryType models.CategoryType) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) (int, error)
	ListPosts(ctx context.Context, opts models.PostListOpts) (*models.PostPage, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id int64, password string) error
	AddComment(ctx context.Context, postID int64, req *models.CreateCommentRequest) (*models.Comment, error)
}

// Services holds all service interfaces
type Services struct {
	Import ImportService
	Export ExportService
	Job    JobService
	Board  BoardService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	normalizer := legacy.NewNormalizer(cfg.Import.RestoreImagePrefix)

	jobSvc := newJobService(repos.Job, log)
	importSvc := newImportService(repos, normalizer, log)
	exportSvc := newExportService(repos, log)
	boardSvc := newBoardService(repos, log)

	// Wire up job processor to import service
	jobSvc.SetImportService(importSvc)

	return &Services{
		Import: importSvc,
		Export: exportSvc,
		Job:    jobSvc,
		Board:  boardSvc,
	}
}
