package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bulletin-board-api/internal/legacy"
	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/repository"
	"github.com/bulletin-board-api/internal/validation"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
)

// boardService is the concrete implementation of BoardService
type boardService struct {
	repos      *repository.Repositories
	postPolicy *bluemonday.Policy
	textPolicy *bluemonday.Policy
	bcryptCost int
	log        zerolog.Logger
}

// newBoardService creates a new BoardService
func newBoardService(repos *repository.Repositories, log zerolog.Logger) *boardService {
	return &boardService{
		repos:      repos,
		postPolicy: bluemonday.UGCPolicy(),
		textPolicy: bluemonday.StrictPolicy(),
		bcryptCost: bcrypt.DefaultCost,
		log:        log.With().Str("service", "board").Logger(),
	}
}

// SeedDefaultCategories creates the default boards that do not exist yet
// and returns how many were created.
func (s *boardService) SeedDefaultCategories(ctx context.Context) (int, error) {
	created := 0
	for _, def := range models.DefaultCategories {
		_, err := s.repos.Category.GetByName(ctx, def.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}

		category := def
		if err := s.repos.Category.Create(ctx, &category); err != nil {
			if errors.Is(err, repository.ErrDuplicateCategory) {
				continue
			}
			return created, fmt.Errorf("failed to seed %s: %w", def.Name, err)
		}
		created++
	}

	if created > 0 {
		s.log.Info().Int("created", created).Msg("Default categories seeded")
	}
	return created, nil
}

// ListCategories returns all boards
func (s *boardService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.repos.Category.List(ctx)
}

// CreateCategory adds a board
func (s *boardService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	if errs := validation.NewValidator().ValidateCategory(req); len(errs) > 0 {
		return nil, validation.Errors(errs)
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.repos.Category.Create(ctx, category); err != nil {
		return nil, err
	}

	s.log.Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("Category created")
	return category, nil
}

// UpdateCategoryType switches a board between text and photo rendering
func (s *boardService) UpdateCategoryType(ctx context.Context, id int64, categoryType models.CategoryType) (*models.Category, error) {
	if errs := validation.NewValidator().ValidateCategoryType(categoryType); len(errs) > 0 {
		return nil, validation.Errors(errs)
	}

	if err := s.repos.Category.UpdateType(ctx, id, categoryType); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return s.repos.Category.GetByID(ctx, id)
}

// DeleteCategory removes a board together with its posts and their comments.
// It returns the number of posts removed.
func (s *boardService) DeleteCategory(ctx context.Context, id int64) (int, error) {
	posts, err := s.repos.Category.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrCategoryNotFound
	}
	if err != nil {
		return 0, err
	}

	s.log.Info().Int64("category_id", id).Int("posts_deleted", posts).Msg("Category deleted")
	return posts, nil
}

// ListPosts returns one page of a board, newest first
func (s *boardService) ListPosts(ctx context.Context, opts models.PostListOpts) (*models.PostPage, error) {
	if opts.PerPage <= 0 {
		opts.PerPage = models.PostsPerPage
	}
	if opts.Page < 1 {
		opts.Page = 1
	}

	posts, total, err := s.repos.Post.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	lo.ForEach(posts, func(p *models.Post, _ int) {
		p.FirstImage = legacy.FirstImageSource(p.Content)
	})
	if posts == nil {
		posts = []*models.Post{}
	}

	return &models.PostPage{
		Posts:   posts,
		Page:    opts.Page,
		PerPage: opts.PerPage,
		Total:   total,
		Pages:   (total + opts.PerPage - 1) / opts.PerPage,
	}, nil
}

// GetPost returns a post with its comments
func (s *boardService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.repos.Post.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	comments, err := s.repos.Comment.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	post.FirstImage = legacy.FirstImageSource(post.Content)
	return post, nil
}

// CreatePost stores an interactively authored post. Content is sanitized and
// an optional password is kept as a bcrypt hash.
func (s *boardService) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	if errs := validation.NewValidator().ValidatePost(req); len(errs) > 0 {
		return nil, validation.Errors(errs)
	}

	category, err := s.repos.Category.GetByName(ctx, req.Category)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, req.Category)
	}
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      strings.TrimSpace(req.Title),
		Author:     strings.TrimSpace(req.Author),
		Content:    s.postPolicy.Sanitize(req.Content),
		Date:       time.Now().Format(models.DisplayDateLayout),
		CategoryID: category.ID,
		Category:   category.Name,
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		post.PasswordHash = string(hash)
	}

	if err := s.repos.Post.Create(ctx, post); err != nil {
		return nil, err
	}

	s.log.Info().Int64("post_id", post.ID).Str("category", post.Category).Msg("Post created")
	return post, nil
}

// DeletePost removes a post and its comments. Posts created with a password
// need the same password; posts without one can always be deleted.
func (s *boardService) DeletePost(ctx context.Context, id int64, password string) error {
	post, err := s.repos.Post.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}

	if post.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(post.PasswordHash), []byte(password)); err != nil {
			return ErrInvalidPassword
		}
	}

	if err := s.repos.Post.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	s.log.Info().Int64("post_id", id).Msg("Post deleted")
	return nil
}

// AddComment attaches a plain-text comment to an existing post
func (s *boardService) AddComment(ctx context.Context, postID int64, req *models.CreateCommentRequest) (*models.Comment, error) {
	if errs := validation.NewValidator().ValidateComment(req); len(errs) > 0 {
		return nil, validation.Errors(errs)
	}

	if _, err := s.repos.Post.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:    postID,
		Author:    s.textPolicy.Sanitize(strings.TrimSpace(req.Author)),
		Content:   s.textPolicy.Sanitize(strings.TrimSpace(req.Content)),
		CreatedAt: time.Now().Format(models.DisplayDateLayout),
	}
	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
