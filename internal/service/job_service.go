package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/repository"
	"github.com/rs/zerolog"
)

const processorInterval = 2 * time.Second

// jobHandler runs one claimed job to completion and records its outcome
type jobHandler func(ctx context.Context, job *models.Job) error

// jobService queues uploaded exports per board. Files for the same board
// are imported one at a time in upload order, so their posts receive ids in
// the order the board was exported. Different boards import in parallel.
type jobService struct {
	jobRepo  repository.JobRepository
	handlers map[models.JobType]jobHandler
	log      zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex

	// boards with a worker draining their queue
	busy   map[string]bool
	busyMu sync.Mutex
	// bounds the number of boards importing at once
	sem chan struct{}
}

func newJobService(jobRepo repository.JobRepository, log zerolog.Logger) *jobService {
	// one board per worker; there are only a handful of boards
	maxBoards := runtime.NumCPU()
	if maxBoards < 2 {
		maxBoards = 2
	}
	if maxBoards > len(models.DefaultCategories) {
		maxBoards = len(models.DefaultCategories)
	}

	log.Info().Int("max_boards", maxBoards).Msg("Initializing import queue")

	return &jobService{
		jobRepo:  jobRepo,
		handlers: make(map[models.JobType]jobHandler),
		log:      log.With().Str("service", "job").Logger(),
		busy:     make(map[string]bool),
		sem:      make(chan struct{}, maxBoards),
	}
}

// SetImportService registers the import service as the handler for import jobs
func (s *jobService) SetImportService(importService ImportService) {
	s.handlers[models.JobTypeImport] = importService.ProcessImport
}

// StartProcessor drains pending jobs immediately and then on every tick
// until ctx is cancelled or StopProcessor is called.
func (s *jobService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Dur("interval", processorInterval).Msg("Job processor started")

	ticker := time.NewTicker(processorInterval)
	defer ticker.Stop()

	for {
		s.dispatch()

		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Job processor stopping")
			return
		case <-ticker.C:
		}
	}
}

// StopProcessor cancels the processor and waits for running imports
func (s *jobService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Job processor stopped")
}

// dispatch starts a worker for every board that has pending jobs and no
// worker already. Boards still busy are picked up on a later tick.
func (s *jobService) dispatch() {
	jobs, err := s.jobRepo.GetPendingJobs(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending jobs")
		return
	}

	boards, queues := queueByBoard(jobs)
	for _, board := range boards {
		if !s.reserve(board) {
			continue
		}

		select {
		case s.sem <- struct{}{}:
		case <-s.ctx.Done():
			s.release(board)
			return
		}

		s.wg.Add(1)
		go func(board string, queue []*models.Job) {
			defer s.wg.Done()
			defer func() { <-s.sem }()
			defer s.release(board)
			s.drainBoard(board, queue)
		}(board, queues[board])
	}
}

// queueByBoard groups pending jobs by category, oldest first. Jobs created
// in the same instant fall back to file name order, which matches the
// numbering of gallery dump files.
func queueByBoard(jobs []*models.Job) ([]string, map[string][]*models.Job) {
	queues := make(map[string][]*models.Job)
	var boards []string
	for _, job := range jobs {
		if _, ok := queues[job.Category]; !ok {
			boards = append(boards, job.Category)
		}
		queues[job.Category] = append(queues[job.Category], job)
	}

	for _, queue := range queues {
		sort.SliceStable(queue, func(i, j int) bool {
			if !queue[i].CreatedAt.Equal(queue[j].CreatedAt) {
				return queue[i].CreatedAt.Before(queue[j].CreatedAt)
			}
			return queue[i].FilePath < queue[j].FilePath
		})
	}
	sort.Strings(boards)
	return boards, queues
}

func (s *jobService) reserve(board string) bool {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	if s.busy[board] {
		return false
	}
	s.busy[board] = true
	return true
}

func (s *jobService) release(board string) {
	s.busyMu.Lock()
	delete(s.busy, board)
	s.busyMu.Unlock()
}

func (s *jobService) drainBoard(board string, queue []*models.Job) {
	log := s.log.With().Str("category", board).Logger()
	log.Debug().Int("queued", len(queue)).Msg("Draining board queue")

	for _, job := range queue {
		if s.ctx.Err() != nil {
			log.Warn().Str("job_id", job.ID).Msg("Shutdown in progress, leaving job pending")
			return
		}

		claimed, err := s.jobRepo.MarkJobAsProcessing(s.ctx, job.ID)
		if err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to claim job")
			continue
		}
		if !claimed {
			continue
		}
		s.runJob(log, job)
	}
}

// runJob hands a claimed job to its handler. A job with no handler, or
// whose handler panics, is marked failed so it does not stay processing.
func (s *jobService) runJob(log zerolog.Logger, job *models.Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("job_id", job.ID).Msg("Import panicked")
			s.failJob(job, fmt.Sprintf("import panicked: %v", r))
		}
	}()

	handler, ok := s.handlers[job.Type]
	if !ok {
		log.Warn().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("No handler for job type")
		s.failJob(job, fmt.Sprintf("no handler for job type %q", job.Type))
		return
	}

	log.Info().Str("job_id", job.ID).Msg("Processing job")
	if err := handler(s.ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("Import processing failed")
	}
}

func (s *jobService) failJob(job *models.Job, message string) {
	now := time.Now()
	job.Status = models.JobStatusFailed
	job.ErrorMessage = message
	job.CompletedAt = &now
	// the processor context may already be cancelled
	if err := s.jobRepo.Update(context.Background(), job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job failed")
	}
}

// GetJob retrieves a job by ID with its first errors. It returns nil, nil
// when the job does not exist.
func (s *jobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	// first 100 only; the full list is on the errors endpoint
	errors, err := s.jobRepo.GetErrors(ctx, id, 100)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", id).Msg("Failed to get job errors")
	}

	response := &models.JobResponse{
		Job:        *job,
		Errors:     errors,
		ErrorCount: len(errors),
	}
	if len(errors) > 0 {
		response.ErrorReport = "/v1/imports/" + job.ID + "/errors"
	}
	return response, nil
}

func (s *jobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	return s.jobRepo.GetByIdempotencyKey(ctx, key)
}

// GetJobErrors retrieves all recorded errors for a job
func (s *jobService) GetJobErrors(ctx context.Context, id string) ([]models.JobError, error) {
	return s.jobRepo.GetErrors(ctx, id, 0)
}
