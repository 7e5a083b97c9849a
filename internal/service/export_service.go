package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/repository"
	"github.com/rs/zerolog"
)

// Export resources and formats
const (
	ResourcePosts      = "posts"
	ResourceComments   = "comments"
	ResourceCategories = "categories"

	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamPosts writes every post of category (all boards when empty)
func (s *exportService) StreamPosts(ctx context.Context, w http.ResponseWriter, format, category string) error {
	rw, err := newRecordWriter(w, ResourcePosts, format)
	if err != nil {
		return err
	}

	s.log.Info().Str("format", format).Str("category", category).Msg("Starting posts export")

	err = s.repos.Post.StreamAll(ctx, category, func(post *models.Post) error {
		return rw.write(post)
	})
	if cerr := rw.close(); err == nil {
		err = cerr
	}

	s.log.Info().Int("count", rw.count).Msg("Posts export completed")
	return err
}

// StreamComments writes every comment whose post is on category
func (s *exportService) StreamComments(ctx context.Context, w http.ResponseWriter, format, category string) error {
	rw, err := newRecordWriter(w, ResourceComments, format)
	if err != nil {
		return err
	}

	s.log.Info().Str("format", format).Str("category", category).Msg("Starting comments export")

	err = s.repos.Comment.StreamAll(ctx, category, func(comment *models.Comment) error {
		return rw.write(comment)
	})
	if cerr := rw.close(); err == nil {
		err = cerr
	}

	s.log.Info().Int("count", rw.count).Msg("Comments export completed")
	return err
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case ResourceCategories:
		return s.repos.Category.Count(ctx)
	case ResourcePosts:
		return s.repos.Post.Count(ctx)
	case ResourceComments:
		return s.repos.Comment.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}

// recordWriter streams records as NDJSON or as one JSON array
type recordWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	array   bool
	count   int
}

func newRecordWriter(w http.ResponseWriter, resource, format string) (*recordWriter, error) {
	rw := &recordWriter{w: w}
	rw.flusher, _ = w.(http.Flusher)

	switch format {
	case FormatNDJSON:
		w.Header().Set("Content-Type", "application/x-ndjson")
	case FormatJSON:
		rw.array = true
		w.Header().Set("Content-Type", "application/json")
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", resource, format))

	if rw.array {
		if _, err := w.Write([]byte("[")); err != nil {
			return nil, err
		}
	}
	return rw, nil
}

func (rw *recordWriter) write(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if rw.array && rw.count > 0 {
		data = append([]byte(","), data...)
	}
	if !rw.array {
		data = append(data, '\n')
	}
	if _, err := rw.w.Write(data); err != nil {
		return err
	}
	rw.count++

	// Flush every 100 records for streaming
	if rw.count%100 == 0 && rw.flusher != nil {
		rw.flusher.Flush()
	}
	return nil
}

func (rw *recordWriter) close() error {
	if rw.array {
		if _, err := rw.w.Write([]byte("]")); err != nil {
			return err
		}
	}
	if rw.flusher != nil {
		rw.flusher.Flush()
	}
	return nil
}
