package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.CategoryRepository = (*MockCategoryRepository)(nil)
	_ repository.PostRepository     = (*MockPostRepository)(nil)
	_ repository.CommentRepository  = (*MockCommentRepository)(nil)
	_ repository.JobRepository      = (*MockJobRepository)(nil)
	_ repository.SessionFactory     = (*MockSessionFactory)(nil)
	_ repository.Session            = (*MockSession)(nil)
)

// MockRepositories bundles in-memory repositories that share state the way
// the PostgreSQL ones share tables.
type MockRepositories struct {
	Category *MockCategoryRepository
	Post     *MockPostRepository
	Comment  *MockCommentRepository
	Job      *MockJobRepository
	Sessions *MockSessionFactory
}

func NewMockRepositories() *MockRepositories {
	posts := NewMockPostRepository()
	comments := NewMockCommentRepository()
	comments.Posts = posts
	posts.Comments = comments

	categories := NewMockCategoryRepository()
	categories.Posts = posts

	return &MockRepositories{
		Category: categories,
		Post:     posts,
		Comment:  comments,
		Job:      NewMockJobRepository(),
		Sessions: NewMockSessionFactory(posts, comments),
	}
}

// Repositories returns the mocks behind the repository interfaces
func (m *MockRepositories) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Category: m.Category,
		Post:     m.Post,
		Comment:  m.Comment,
		Job:      m.Job,
		Sessions: m.Sessions,
	}
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	Categories  []*models.Category
	Posts       *MockPostRepository
	CreateError error
	nextID      int64
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{}
}

// Seed stores the default boards
func (m *MockCategoryRepository) Seed() {
	for _, def := range models.DefaultCategories {
		category := def
		m.Create(context.Background(), &category)
	}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	for _, c := range m.Categories {
		if c.Name == category.Name {
			return repository.ErrDuplicateCategory
		}
	}
	m.nextID++
	category.ID = m.nextID
	m.Categories = append(m.Categories, category)
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	for _, c := range m.Categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	for _, c := range m.Categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	out := append([]*models.Category(nil), m.Categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockCategoryRepository) UpdateType(ctx context.Context, id int64, categoryType models.CategoryType) error {
	c, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.Type = categoryType
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) (int, error) {
	for i, c := range m.Categories {
		if c.ID != id {
			continue
		}
		m.Categories = append(m.Categories[:i], m.Categories[i+1:]...)
		if m.Posts == nil {
			return 0, nil
		}
		return m.Posts.deleteCategory(id), nil
	}
	return 0, repository.ErrNotFound
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	return len(m.Categories), nil
}

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	Posts       []*models.Post
	Comments    *MockCommentRepository
	InsertError error
	nextID      int64
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{}
}

func (m *MockPostRepository) allocateID() int64 {
	m.nextID++
	return m.nextID
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if err := checkPostColumns(post); err != nil {
		return err
	}
	post.ID = m.allocateID()
	m.Posts = append(m.Posts, post)
	return nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	for _, p := range m.Posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPostRepository) List(ctx context.Context, opts models.PostListOpts) ([]*models.Post, int, error) {
	q := strings.ToLower(strings.TrimSpace(opts.Query))

	var matched []*models.Post
	for i := len(m.Posts) - 1; i >= 0; i-- {
		p := m.Posts[i]
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Author), q) {
			continue
		}
		matched = append(matched, p)
	}

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = models.PostsPerPage
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(matched) {
		return nil, len(matched), nil
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (m *MockPostRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Content = content
	return nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id int64) error {
	for i, p := range m.Posts {
		if p.ID == id {
			m.Posts = append(m.Posts[:i], m.Posts[i+1:]...)
			if m.Comments != nil {
				m.Comments.deletePost(id)
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockPostRepository) deleteCategory(categoryID int64) int {
	var ids []int64
	for _, p := range m.Posts {
		if p.CategoryID == categoryID {
			ids = append(ids, p.ID)
		}
	}
	for _, id := range ids {
		m.Delete(context.Background(), id)
	}
	return len(ids)
}

func (m *MockPostRepository) Count(ctx context.Context) (int, error) {
	return len(m.Posts), nil
}

func (m *MockPostRepository) StreamAll(ctx context.Context, category string, callback func(*models.Post) error) error {
	for _, post := range m.Posts {
		if category != "" && post.Category != category {
			continue
		}
		if err := callback(post); err != nil {
			return err
		}
	}
	return nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	Comments    []*models.Comment
	Posts       *MockPostRepository
	InsertError error
	nextID      int64
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{}
}

func (m *MockCommentRepository) allocateID() int64 {
	m.nextID++
	return m.nextID
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	comment.ID = m.allocateID()
	m.Comments = append(m.Comments, comment)
	return nil
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range m.Comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockCommentRepository) deletePost(postID int64) {
	kept := m.Comments[:0]
	for _, c := range m.Comments {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	m.Comments = kept
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	return len(m.Comments), nil
}

func (m *MockCommentRepository) StreamAll(ctx context.Context, category string, callback func(*models.Comment) error) error {
	for _, comment := range m.Comments {
		if category != "" && m.Posts != nil {
			post, err := m.Posts.GetByID(ctx, comment.PostID)
			if err != nil || post.Category != category {
				continue
			}
		}
		if err := callback(comment); err != nil {
			return err
		}
	}
	return nil
}

// MockSessionFactory hands out sessions whose writes reach the post and
// comment mocks only on Commit.
type MockSessionFactory struct {
	Posts    *MockPostRepository
	Comments *MockCommentRepository

	BeginError        error
	CommitError       error
	InsertPostFunc    func(post *models.Post) error
	InsertCommentFunc func(comment *models.Comment) error

	Begins    int
	Commits   int
	Rollbacks int
}

func NewMockSessionFactory(posts *MockPostRepository, comments *MockCommentRepository) *MockSessionFactory {
	return &MockSessionFactory{Posts: posts, Comments: comments}
}

func (f *MockSessionFactory) Begin(ctx context.Context) (repository.Session, error) {
	if f.BeginError != nil {
		return nil, f.BeginError
	}
	f.Begins++
	return &MockSession{factory: f}, nil
}

// MockSession buffers writes until Commit
type MockSession struct {
	factory  *MockSessionFactory
	posts    []*models.Post
	comments []*models.Comment
	done     bool
}

// ErrValueTooLong mirrors PostgreSQL's 22001 for the bounded columns in
// migrations/000001_create_board.up.sql. Imported text columns are TEXT.
var ErrValueTooLong = errors.New("value too long for type character varying")

const (
	categoryColumnLimit = 50
	passwordColumnLimit = 100
)

func checkPostColumns(post *models.Post) error {
	if utf8.RuneCountInString(post.Category) > categoryColumnLimit {
		return fmt.Errorf("posts.category: %w(%d)", ErrValueTooLong, categoryColumnLimit)
	}
	if utf8.RuneCountInString(post.PasswordHash) > passwordColumnLimit {
		return fmt.Errorf("posts.password_hash: %w(%d)", ErrValueTooLong, passwordColumnLimit)
	}
	return nil
}

func (s *MockSession) InsertPost(ctx context.Context, post *models.Post) error {
	if err := checkPostColumns(post); err != nil {
		return err
	}
	if s.factory.InsertPostFunc != nil {
		if err := s.factory.InsertPostFunc(post); err != nil {
			return err
		}
	}
	post.ID = s.factory.Posts.allocateID()
	s.posts = append(s.posts, post)
	return nil
}

func (s *MockSession) InsertComment(ctx context.Context, comment *models.Comment) error {
	if s.factory.InsertCommentFunc != nil {
		if err := s.factory.InsertCommentFunc(comment); err != nil {
			return err
		}
	}
	comment.ID = s.factory.Comments.allocateID()
	s.comments = append(s.comments, comment)
	return nil
}

func (s *MockSession) Commit() error {
	if s.factory.CommitError != nil {
		return s.factory.CommitError
	}
	s.factory.Posts.Posts = append(s.factory.Posts.Posts, s.posts...)
	s.factory.Comments.Comments = append(s.factory.Comments.Comments, s.comments...)
	s.factory.Commits++
	s.done = true
	return nil
}

func (s *MockSession) Rollback() error {
	if s.done {
		return nil
	}
	s.posts, s.comments = nil, nil
	s.factory.Rollbacks++
	s.done = true
	return nil
}

// MockJobRepository is a mock implementation of JobRepository. It is safe
// for use by the background job processor.
type MockJobRepository struct {
	mu              sync.Mutex
	Jobs            map[string]*models.Job
	IdempotencyJobs map[string]*models.Job
	Errors          map[string][]models.JobError
	CreateError     error
	UpdateError     error
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		Jobs:            make(map[string]*models.Job),
		IdempotencyJobs: make(map[string]*models.Job),
		Errors:          make(map[string][]models.JobError),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	m.Jobs[job.ID] = job
	if job.IdempotencyKey != "" {
		m.IdempotencyJobs[job.IdempotencyKey] = job
	}
	return nil
}

func (m *MockJobRepository) Update(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.Jobs[job.ID] = job
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Jobs[id], nil
}

func (m *MockJobRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.IdempotencyJobs[key], nil
}

func (m *MockJobRepository) GetPendingJobs(ctx context.Context) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []*models.Job
	for _, job := range m.Jobs {
		if job.Status == models.JobStatusPending {
			pending = append(pending, job)
		}
	}
	return pending, nil
}

func (m *MockJobRepository) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.Jobs[jobID]
	if !exists || job.Status != models.JobStatusPending {
		return false, nil
	}
	job.Status = models.JobStatusProcessing
	return true, nil
}

func (m *MockJobRepository) AddErrors(ctx context.Context, jobID string, errors []models.JobError) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Errors[jobID] = append(m.Errors[jobID], errors...)
	return nil
}

func (m *MockJobRepository) GetErrors(ctx context.Context, jobID string, limit int) ([]models.JobError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	errors := m.Errors[jobID]
	if limit > 0 && len(errors) > limit {
		return errors[:limit], nil
	}
	return errors, nil
}
