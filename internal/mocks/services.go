package mocks

import (
	"context"
	"net/http"

	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/service"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	CreateJobFunc func(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error)
	ProcessFunc   func(ctx context.Context, job *models.Job) error
	ProcessedJobs []*models.Job
	CreatedJobs   []*models.Job
	CreatedPaths  []string
	RepairedPosts int
	ImportedFiles []string
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{
		ProcessedJobs: make([]*models.Job, 0),
		CreatedJobs:   make([]*models.Job, 0),
	}
}

func (m *MockImportService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error) {
	m.CreatedPaths = append(m.CreatedPaths, filePath)
	if m.CreateJobFunc != nil {
		return m.CreateJobFunc(ctx, req, filePath)
	}
	job := &models.Job{
		ID:             "test-job-id",
		Type:           models.JobTypeImport,
		Category:       req.Category,
		Status:         models.JobStatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}
	m.CreatedJobs = append(m.CreatedJobs, job)
	return job, nil
}

func (m *MockImportService) ProcessImport(ctx context.Context, job *models.Job) error {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, job)
	}
	m.ProcessedJobs = append(m.ProcessedJobs, job)
	job.Status = models.JobStatusCompleted
	return nil
}

func (m *MockImportService) ImportFile(ctx context.Context, path, category string) (*models.Job, error) {
	m.ImportedFiles = append(m.ImportedFiles, path)
	job := &models.Job{ID: path, Type: models.JobTypeImport, Category: category, FilePath: path}
	return job, m.ProcessImport(ctx, job)
}

func (m *MockImportService) ImportDir(ctx context.Context, dir, prefix, category string) ([]*models.Job, error) {
	return nil, nil
}

func (m *MockImportService) RepairImagePaths(ctx context.Context) (int, error) {
	return m.RepairedPosts, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamPostsFunc    func(ctx context.Context, w http.ResponseWriter, format, category string) error
	StreamCommentsFunc func(ctx context.Context, w http.ResponseWriter, format, category string) error
	Counts             map[string]int
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			service.ResourceCategories: 0,
			service.ResourcePosts:      0,
			service.ResourceComments:   0,
		},
	}
}

func (m *MockExportService) StreamPosts(ctx context.Context, w http.ResponseWriter, format, category string) error {
	if m.StreamPostsFunc != nil {
		return m.StreamPostsFunc(ctx, w, format, category)
	}
	return nil
}

func (m *MockExportService) StreamComments(ctx context.Context, w http.ResponseWriter, format, category string) error {
	if m.StreamCommentsFunc != nil {
		return m.StreamCommentsFunc(ctx, w, format, category)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	return m.Counts[resource], nil
}

// MockJobService is a mock implementation of JobService
type MockJobService struct {
	Jobs          map[string]*models.JobResponse
	Errors        map[string][]models.JobError
	ImportService service.ImportService
}

// Verify interface compliance
var _ service.JobService = (*MockJobService)(nil)

func NewMockJobService() *MockJobService {
	return &MockJobService{
		Jobs:   make(map[string]*models.JobResponse),
		Errors: make(map[string][]models.JobError),
	}
}

func (m *MockJobService) StartProcessor(ctx context.Context) {}

func (m *MockJobService) StopProcessor() {}

func (m *MockJobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	return m.Jobs[id], nil
}

func (m *MockJobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	for _, job := range m.Jobs {
		if job.IdempotencyKey == key {
			return &job.Job, nil
		}
	}
	return nil, nil
}

func (m *MockJobService) GetJobErrors(ctx context.Context, id string) ([]models.JobError, error) {
	return m.Errors[id], nil
}

func (m *MockJobService) SetImportService(importService service.ImportService) {
	m.ImportService = importService
}

// MockBoardService is an in-memory BoardService. Err, when set, is returned
// from every call.
type MockBoardService struct {
	Categories []*models.Category
	Posts      map[int64]*models.Post
	Err        error
	Seeded     int

	CreatedPosts    []*models.CreatePostRequest
	CreatedComments []*models.CreateCommentRequest
	DeletedPosts    []int64
	DeletedPassword string
	LastListOpts    models.PostListOpts
}

// Verify interface compliance
var _ service.BoardService = (*MockBoardService)(nil)

func NewMockBoardService() *MockBoardService {
	return &MockBoardService{Posts: make(map[int64]*models.Post)}
}

func (m *MockBoardService) SeedDefaultCategories(ctx context.Context) (int, error) {
	return m.Seeded, m.Err
}

func (m *MockBoardService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return m.Categories, m.Err
}

func (m *MockBoardService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	category := &models.Category{ID: int64(len(m.Categories) + 1), Name: req.Name, Type: req.Type, Description: req.Description}
	m.Categories = append(m.Categories, category)
	return category, nil
}

func (m *MockBoardService) UpdateCategoryType(ctx context.Context, id int64, categoryType models.CategoryType) (*models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.Categories {
		if c.ID == id {
			c.Type = categoryType
			return c, nil
		}
	}
	return nil, service.ErrCategoryNotFound
}

func (m *MockBoardService) DeleteCategory(ctx context.Context, id int64) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	for i, c := range m.Categories {
		if c.ID == id {
			m.Categories = append(m.Categories[:i], m.Categories[i+1:]...)
			return 0, nil
		}
	}
	return 0, service.ErrCategoryNotFound
}

func (m *MockBoardService) ListPosts(ctx context.Context, opts models.PostListOpts) (*models.PostPage, error) {
	m.LastListOpts = opts
	if m.Err != nil {
		return nil, m.Err
	}
	posts := make([]*models.Post, 0, len(m.Posts))
	for _, p := range m.Posts {
		posts = append(posts, p)
	}
	return &models.PostPage{Posts: posts, Page: opts.Page, PerPage: models.PostsPerPage, Total: len(posts), Pages: 1}, nil
}

func (m *MockBoardService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	post, ok := m.Posts[id]
	if !ok {
		return nil, service.ErrPostNotFound
	}
	return post, nil
}

func (m *MockBoardService) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	m.CreatedPosts = append(m.CreatedPosts, req)
	if m.Err != nil {
		return nil, m.Err
	}
	post := &models.Post{ID: int64(len(m.Posts) + 1), Title: req.Title, Author: req.Author, Content: req.Content, Category: req.Category}
	m.Posts[post.ID] = post
	return post, nil
}

func (m *MockBoardService) DeletePost(ctx context.Context, id int64, password string) error {
	m.DeletedPassword = password
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Posts[id]; !ok {
		return service.ErrPostNotFound
	}
	delete(m.Posts, id)
	m.DeletedPosts = append(m.DeletedPosts, id)
	return nil
}

func (m *MockBoardService) AddComment(ctx context.Context, postID int64, req *models.CreateCommentRequest) (*models.Comment, error) {
	m.CreatedComments = append(m.CreatedComments, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if _, ok := m.Posts[postID]; !ok {
		return nil, service.ErrPostNotFound
	}
	return &models.Comment{ID: int64(len(m.CreatedComments)), PostID: postID, Author: req.Author, Content: req.Content}, nil
}
