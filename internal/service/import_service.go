package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bulletin-board-api/internal/legacy"
	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// DefaultGalleryPrefix selects the gallery board exports in a dump directory
const DefaultGalleryPrefix = "module_g1."

// importService is the concrete implementation of ImportService
type importService struct {
	repos      *repository.Repositories
	normalizer *legacy.Normalizer
	log        zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, normalizer *legacy.Normalizer, log zerolog.Logger) *importService {
	return &importService{
		repos:      repos,
		normalizer: normalizer,
		log:        log.With().Str("service", "import").Logger(),
	}
}

// CreateImportJob queues an uploaded export for the background processor.
// req.Category is a board name or the original export file name.
func (s *importService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error) {
	category, err := legacy.TagCategory(req.Category)
	if err != nil {
		return nil, err
	}

	job := newImportJob(category, filePath, req.IdempotencyKey)
	if err := s.repos.Job.Create(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("category", job.Category).
		Str("file", filePath).
		Msg("Import job created")

	return job, nil
}

// ImportFile imports one export file synchronously. The destination board
// is category when given, otherwise it is derived from the file name.
func (s *importService) ImportFile(ctx context.Context, path, category string) (*models.Job, error) {
	label := category
	if label == "" {
		label = path
	}
	name, err := legacy.TagCategory(label)
	if err != nil {
		return nil, err
	}

	job := newImportJob(name, path, "")
	if err := s.repos.Job.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	return job, s.ProcessImport(ctx, job)
}

// ImportDir imports every export in dir whose name starts with prefix, in
// name order. Each file is its own transaction; a failed file does not stop
// the ones after it.
func (s *importService) ImportDir(ctx context.Context, dir, prefix, category string) ([]*models.Job, error) {
	if prefix == "" {
		prefix = DefaultGalleryPrefix
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		name := e.Name()
		return name, !e.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".xml")
	})
	sort.Strings(names)

	var jobs []*models.Job
	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		job, err := s.ImportFile(ctx, filepath.Join(dir, name), category)
		if job != nil {
			jobs = append(jobs, job)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	s.log.Info().
		Str("dir", dir).
		Str("prefix", prefix).
		Int("files", len(names)).
		Int("failed_files", len(errs)).
		Int("posts", lo.SumBy(jobs, func(j *models.Job) int { return j.SuccessfulCount })).
		Msg("Directory import completed")

	return jobs, errors.Join(errs...)
}

// ProcessImport runs an import job over its export file
func (s *importService) ProcessImport(ctx context.Context, job *models.Job) error {
	startTime := time.Now()
	now := startTime
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	if err := s.repos.Job.Update(ctx, job); err != nil {
		s.log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to mark job as processing")
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("category", job.Category).
		Str("file", job.FilePath).
		Msg("Starting import processing")

	err := s.runImport(ctx, job)

	duration := time.Since(startTime)
	job.DurationMs = duration.Milliseconds()
	if job.ProcessedCount > 0 && duration.Seconds() > 0 {
		job.RowsPerSec = float64(job.ProcessedCount) / duration.Seconds()
	}

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Status = models.JobStatusFailed
		job.ErrorMessage = err.Error()
		s.log.Error().
			Err(err).
			Str("job_id", job.ID).
			Str("file", job.FilePath).
			Int("records_read", job.TotalRecords).
			Msg("Import failed")
	} else {
		job.Status = models.JobStatusCompleted
		s.log.Info().
			Str("job_id", job.ID).
			Str("category", job.Category).
			Int("posts", job.SuccessfulCount).
			Int("comments", job.CommentsImported).
			Int("comments_failed", job.CommentsFailed).
			Int("fields_recovered", job.FieldsRecovered).
			Int64("duration_ms", job.DurationMs).
			Float64("rows_per_sec", job.RowsPerSec).
			Msg("Import completed")
	}

	if uerr := s.repos.Job.Update(ctx, job); uerr != nil {
		s.log.Error().Err(uerr).Str("job_id", job.ID).Msg("Failed to update job")
	}

	return err
}

func (s *importService) runImport(ctx context.Context, job *models.Job) error {
	category, err := s.repos.Category.GetByName(ctx, job.Category)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, job.Category)
	}
	if err != nil {
		return err
	}

	file, err := os.Open(job.FilePath)
	if err != nil {
		return err
	}
	defer file.Close()

	session, err := s.repos.Sessions.Begin(ctx)
	if err != nil {
		return err
	}

	run := &importRun{
		svc:      s,
		job:      job,
		category: category,
		session:  session,
	}
	err = run.materialize(ctx, legacy.NewReader(file))
	s.flushJobErrors(ctx, job.ID, &run.errors)
	return err
}

// importRun materializes one export file through a single store session
type importRun struct {
	svc      *importService
	job      *models.Job
	category *models.Category
	session  repository.Session
	errors   []models.JobError
}

// materialize streams records into the session and commits once at the end.
// A malformed file or a failed post insert rolls back the whole file.
func (r *importRun) materialize(ctx context.Context, reader *legacy.Reader) error {
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := r.session.Rollback(); err != nil {
			r.svc.log.Warn().Err(err).Str("job_id", r.job.ID).Msg("Rollback failed")
		}
		r.job.FailedCount = r.job.TotalRecords
		r.job.SuccessfulCount = 0
		r.job.CommentsImported = 0
	}()

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.record(reader.Count()+1, "file", err.Error(), nil)
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		r.job.TotalRecords++
		r.job.ProcessedCount++

		post := r.buildPost(rec)
		if err := r.session.InsertPost(ctx, post); err != nil {
			r.record(rec.Ordinal, "post", err.Error(), post.Title)
			return fmt.Errorf("failed to insert post %d: %w", rec.Ordinal, err)
		}
		r.job.SuccessfulCount++

		for i := range rec.Comments {
			r.materializeComment(ctx, post, rec, i)
		}

		if len(r.errors) >= errorFlushThreshold {
			r.svc.flushJobErrors(ctx, r.job.ID, &r.errors)
		}
	}

	if err := r.session.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	committed = true
	return nil
}

func (r *importRun) buildPost(rec *models.LegacyPostRecord) *models.Post {
	title := legacy.DecodeField(rec.Title)
	author := legacy.DecodeAuthor(rec.NickName, rec.UserID)
	regDate := legacy.DecodeField(rec.RegDate)
	content := legacy.DecodeContent(rec.Content)

	r.recordField(rec.Ordinal, "title", title)
	r.recordField(rec.Ordinal, "author", author)
	r.recordField(rec.Ordinal, "regdate", regDate)
	r.recordField(rec.Ordinal, "content", content)

	return &models.Post{
		Title:      title.Trimmed(),
		Author:     author.Trimmed(),
		Content:    strings.TrimSpace(r.svc.normalizer.Normalize(content.Value)),
		Date:       legacy.FormatRegDate(regDate.Trimmed()),
		ReadCount:  rec.ReadCount,
		CategoryID: r.category.ID,
		Category:   r.category.Name,
	}
}

// materializeComment inserts one comment of post. Failures are recorded and
// swallowed so the remaining comments still go in.
func (r *importRun) materializeComment(ctx context.Context, post *models.Post, rec *models.LegacyPostRecord, i int) {
	field := fmt.Sprintf("comments[%d]", i)

	defer func() {
		if p := recover(); p != nil {
			r.job.CommentsFailed++
			r.record(rec.Ordinal, field, fmt.Sprintf("panic: %v", p), nil)
			r.svc.log.Error().
				Interface("panic", p).
				Str("job_id", r.job.ID).
				Int("post", rec.Ordinal).
				Int("comment", i).
				Msg("Comment materialization panicked - recovered")
		}
	}()

	src := rec.Comments[i]
	author := legacy.DecodeAuthor(src.NickName, src.UserID)
	content := legacy.DecodeField(src.Content)
	regDate := legacy.DecodeField(src.RegDate)

	r.recordField(rec.Ordinal, field+".author", author)
	r.recordField(rec.Ordinal, field+".content", content)
	r.recordField(rec.Ordinal, field+".regdate", regDate)

	comment := &models.Comment{
		PostID:    post.ID,
		Author:    author.Trimmed(),
		Content:   content.Trimmed(),
		CreatedAt: legacy.FormatRegDate(regDate.Trimmed()),
	}

	if err := r.session.InsertComment(ctx, comment); err != nil {
		r.job.CommentsFailed++
		r.record(rec.Ordinal, field, err.Error(), nil)
		r.svc.log.Warn().
			Err(err).
			Str("job_id", r.job.ID).
			Int64("post_id", post.ID).
			Int("comment", i).
			Msg("Skipping comment")
		return
	}
	r.job.CommentsImported++
}

func (r *importRun) recordField(line int, name string, f legacy.Field) {
	if !f.Recovered {
		return
	}
	r.job.FieldsRecovered++
	r.record(line, name, "field could not be decoded, stored as empty: "+f.Err.Error(), nil)
}

func (r *importRun) record(line int, field, message string, value interface{}) {
	r.errors = append(r.errors, models.JobError{
		Line:    line,
		Field:   field,
		Message: message,
		Value:   value,
	})
}

// RepairImagePaths rewrites image sources of stored posts that still point at
// an old upload directory or at an unresolved relative path.
func (s *importService) RepairImagePaths(ctx context.Context) (int, error) {
	type repair struct {
		id      int64
		content string
	}

	var repairs []repair
	err := s.repos.Post.StreamAll(ctx, "", func(post *models.Post) error {
		if content, changed := s.normalizer.RepairLegacyPaths(post.Content, legacy.DefaultLegacyUploadPrefixes); changed {
			repairs = append(repairs, repair{id: post.ID, content: content})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, r := range repairs {
		if err := s.repos.Post.UpdateContent(ctx, r.id, r.content); err != nil {
			return updated, fmt.Errorf("failed to update post %d: %w", r.id, err)
		}
		updated++
	}

	s.log.Info().Int("updated_posts", updated).Msg("Image paths repaired")
	return updated, nil
}

// errorFlushThreshold bounds how many job errors are held before writing
const errorFlushThreshold = 1000

func (s *importService) flushJobErrors(ctx context.Context, jobID string, errors *[]models.JobError) {
	if len(*errors) == 0 {
		return
	}
	if err := s.repos.Job.AddErrors(ctx, jobID, *errors); err != nil {
		s.log.Error().Err(err).Int("count", len(*errors)).Msg("Failed to flush job errors")
	}
	*errors = (*errors)[:0]
}

func newImportJob(category, filePath, idempotencyKey string) *models.Job {
	return &models.Job{
		ID:             uuid.New().String(),
		Type:           models.JobTypeImport,
		Category:       category,
		Status:         models.JobStatusPending,
		IdempotencyKey: idempotencyKey,
		FilePath:       filePath,
		CreatedAt:      time.Now(),
	}
}
